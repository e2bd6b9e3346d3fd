package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/entity"
)

const (
	defaultInspectionsLimit = 50
	defaultRecentDays       = 30
)

// NearbyInspectionsResponse результат поиска осмотров.
type NearbyInspectionsResponse struct {
	Center      entity.Location       `json:"center"`
	RadiusKm    float64               `json:"radius_km"`
	Count       int                   `json:"count"`
	Inspections []app.InspectionMatch `json:"inspections"`
}

func (s *Server) listCables(c echo.Context) error {
	operational, err := queryBool(c, "operational")
	if err != nil {
		return err
	}
	routes, err := s.services.CableService.List(c.Request().Context(), operational)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routes)
}

func (s *Server) createCable(c echo.Context) error {
	var route entity.CableRoute
	if err := c.Bind(&route); err != nil {
		return entity.NewValidationError("body", "malformed cable route")
	}
	if err := s.services.CableService.Create(c.Request().Context(), &route); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, route)
}

func (s *Server) cableStatistics(c echo.Context) error {
	stats, err := s.services.CableService.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) cablesNeedingInspection(c echo.Context) error {
	days, err := queryInt(c, "days", s.services.CableService.Defaults().InspectionMaxAge)
	if err != nil {
		return err
	}
	routes, err := s.services.CableService.NeedingInspection(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routes)
}

func (s *Server) getCable(c echo.Context) error {
	route, err := s.services.CableService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, route)
}

func (s *Server) cableInspections(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultInspectionsLimit)
	if err != nil {
		return err
	}
	inspections, err := s.services.CableService.Inspections(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inspections)
}

func (s *Server) listInspections(c echo.Context) error {
	days, err := queryInt(c, "days", defaultRecentDays)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultInspectionsLimit)
	if err != nil {
		return err
	}
	inspections, err := s.services.CableService.RecentInspections(
		c.Request().Context(), days, entity.Condition(c.QueryParam("condition")), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inspections)
}

func (s *Server) nearbyInspections(c echo.Context) error {
	center, err := queryLocation(c)
	if err != nil {
		return err
	}
	radius, err := queryFloat(c, "radius_km", s.services.CableService.Defaults().InspectionRadiusKm)
	if err != nil {
		return err
	}
	matches, err := s.services.CableService.NearbyInspections(c.Request().Context(), center, radius)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NearbyInspectionsResponse{
		Center:      center,
		RadiusKm:    radius,
		Count:       len(matches),
		Inspections: matches,
	})
}
