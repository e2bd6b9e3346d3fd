package entity

import "math"

// Location географическая точка в десятичных градусах.
type Location struct {
	Latitude  float64  `json:"latitude" yaml:"latitude"`
	Longitude float64  `json:"longitude" yaml:"longitude"`
	Depth     *float64 `json:"depth,omitempty" yaml:"depth,omitempty"` // глубина в метрах
}

// Validate проверяет диапазоны координат и глубины.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return NewValidationError("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return NewValidationError("longitude", "must be between -180 and 180")
	}
	if l.Depth != nil && (math.IsNaN(*l.Depth) || math.IsInf(*l.Depth, 0) || *l.Depth < 0) {
		return NewValidationError("depth", "must be a non-negative number of meters")
	}
	return nil
}

// Installation стационарный объект с известным положением.
type Installation struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}
