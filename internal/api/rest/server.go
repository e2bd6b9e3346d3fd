package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"subsea-inspector/internal/container"
	"subsea-inspector/internal/metrics"
)

// Options параметры HTTP-сервера.
type Options struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    string
	Gatherer     prometheus.Gatherer
	// Health проверяет зависимости для /health; nil означает всегда здоров.
	Health func(ctx context.Context) error
}

// Server REST API поверх сервисов приложения.
type Server struct {
	echo     *echo.Echo
	services *container.Container
	opts     Options
	log      *slog.Logger
}

// NewServer собирает echo с middleware и маршрутами.
func NewServer(services *container.Container, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		services: services,
		opts:     opts,
		log:      log.With("component", "http"),
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	e.Use(observeRequests)
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})))

	v1 := e.Group("/api/v1")

	v1.GET("/fields", s.listFields)
	v1.GET("/fields/statistics", s.fieldStatistics)
	v1.GET("/fields/nearby", s.nearbyFields)
	v1.GET("/fields/nearest", s.nearestFields)
	v1.GET("/fields/:id", s.getField)
	v1.GET("/fields/:id/network", s.fieldNetwork)
	v1.GET("/fields/:id/cables", s.fieldCables)

	v1.GET("/cables", s.listCables)
	v1.POST("/cables", s.createCable)
	v1.GET("/cables/statistics", s.cableStatistics)
	v1.GET("/cables/needing-inspection", s.cablesNeedingInspection)
	v1.GET("/cables/:id", s.getCable)
	v1.GET("/cables/:id/inspections", s.cableInspections)

	v1.GET("/inspections", s.listInspections)
	v1.GET("/inspections/nearby", s.nearbyInspections)

	v1.POST("/analyze", s.analyze)
	v1.POST("/batch-analyze", s.batchAnalyze)
	v1.POST("/visual-inspection/analyze", s.visualInspection)
	v1.GET("/analysis/:id", s.getAnalysis)
	v1.POST("/score", s.score)
}

// Handler возвращает http.Handler, например для httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start слушает адрес до вызова Shutdown.
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = s.opts.ReadTimeout
	s.echo.Server.WriteTimeout = s.opts.WriteTimeout

	s.log.Info("http server listening", "address", s.opts.Address)
	if err := s.echo.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				status, _ = statusFor(v.Error)
			}

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", status),
				slog.String("ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			s.log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

func observeRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status, _ = statusFor(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request().Method, route, status, time.Since(started))
		return err
	}
}
