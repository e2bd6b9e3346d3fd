package rest

import (
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"subsea-inspector/internal/domain/entity"
)

func queryFloat(c echo.Context, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, entity.NewValidationError(name, "must be a finite number")
	}
	return v, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

// queryBool возвращает nil, если параметр не задан.
func queryBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, entity.NewValidationError(name, "must be true or false")
	}
	return &v, nil
}

// queryLocation читает обязательные latitude и longitude и необязательную depth.
func queryLocation(c echo.Context) (entity.Location, error) {
	loc, err := queryOptionalLocation(c)
	if err != nil {
		return entity.Location{}, err
	}
	if loc == nil {
		return entity.Location{}, entity.NewValidationError("location", "latitude and longitude are required")
	}
	return *loc, nil
}

// queryOptionalLocation возвращает nil, если координаты не переданы вовсе.
func queryOptionalLocation(c echo.Context) (*entity.Location, error) {
	hasLat := c.QueryParam("latitude") != ""
	hasLon := c.QueryParam("longitude") != ""
	if !hasLat && !hasLon {
		return nil, nil
	}
	if hasLat != hasLon {
		return nil, entity.NewValidationError("location", "latitude and longitude must be given together")
	}

	lat, err := queryFloat(c, "latitude", 0)
	if err != nil {
		return nil, err
	}
	lon, err := queryFloat(c, "longitude", 0)
	if err != nil {
		return nil, err
	}
	loc := &entity.Location{Latitude: lat, Longitude: lon}
	if c.QueryParam("depth") != "" {
		depth, err := queryFloat(c, "depth", 0)
		if err != nil {
			return nil, err
		}
		loc.Depth = &depth
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return loc, nil
}
