package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

const defaultPageSize = 100

// NearbyFieldsResponse результат поиска месторождений.
type NearbyFieldsResponse struct {
	Center   entity.Location  `json:"center"`
	RadiusKm float64          `json:"radius_km,omitempty"`
	Count    int              `json:"count"`
	Fields   []app.FieldMatch `json:"fields"`
}

func (s *Server) listFields(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		return err
	}

	fields, err := s.services.FieldService.List(c.Request().Context(), port.FieldFilter{
		Operator: c.QueryParam("operator"),
		Status:   entity.FieldStatus(c.QueryParam("status")),
		SeaArea:  entity.SeaArea(c.QueryParam("sea_area")),
		Query:    c.QueryParam("search"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fields)
}

func (s *Server) fieldStatistics(c echo.Context) error {
	stats, err := s.services.FieldService.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) nearbyFields(c echo.Context) error {
	center, err := queryLocation(c)
	if err != nil {
		return err
	}
	radius, err := queryFloat(c, "radius_km", s.services.FieldService.Defaults().RadiusKm)
	if err != nil {
		return err
	}

	matches, err := s.services.FieldService.Nearby(c.Request().Context(), center, radius)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NearbyFieldsResponse{Center: center, RadiusKm: radius, Count: len(matches), Fields: matches})
}

func (s *Server) nearestFields(c echo.Context) error {
	center, err := queryLocation(c)
	if err != nil {
		return err
	}
	count, err := queryInt(c, "count", s.services.FieldService.Defaults().NearestCount)
	if err != nil {
		return err
	}

	matches, err := s.services.FieldService.Nearest(c.Request().Context(), center, count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NearbyFieldsResponse{Center: center, Count: len(matches), Fields: matches})
}

func (s *Server) getField(c echo.Context) error {
	field, err := s.services.FieldService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, field)
}

func (s *Server) fieldNetwork(c echo.Context) error {
	network, err := s.services.FieldService.Network(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, network)
}

func (s *Server) fieldCables(c echo.Context) error {
	routes, err := s.services.CableService.RoutesForField(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routes)
}
