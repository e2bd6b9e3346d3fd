package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthResponse ответ корневого маршрута и проверки здоровья.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Message:   "Subsea inspection API is running",
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) health(c echo.Context) error {
	if s.opts.Health != nil {
		if err := s.opts.Health(c.Request().Context()); err != nil {
			s.log.Warn("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "unhealthy",
				Message:   err.Error(),
				Timestamp: time.Now().UTC(),
			})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Message:   "All systems operational",
		Timestamp: time.Now().UTC(),
	})
}
