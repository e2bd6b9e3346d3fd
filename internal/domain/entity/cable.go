package entity

import (
	"strings"
	"time"
)

// CableType тип подводного кабеля
type CableType string

const (
	CablePower         CableType = "power"
	CableCommunication CableType = "communication"
	CableUmbilical     CableType = "umbilical"
)

// Valid сообщает, известен ли тип кабеля.
func (t CableType) Valid() bool {
	switch t {
	case CablePower, CableCommunication, CableUmbilical:
		return true
	}
	return false
}

// CableRoute маршрут кабеля между двумя месторождениями.
type CableRoute struct {
	ID                 string     `json:"route_id" yaml:"route_id"`
	Name               string     `json:"name" yaml:"name"`
	StartFieldID       string     `json:"start_field_id" yaml:"start_field_id"`
	EndFieldID         string     `json:"end_field_id" yaml:"end_field_id"`
	Type               CableType  `json:"cable_type" yaml:"cable_type"`
	LengthKm           float64    `json:"length_km" yaml:"length_km"`
	InstallationYear   *int       `json:"installation_year,omitempty" yaml:"installation_year,omitempty"`
	Operational        bool       `json:"operational" yaml:"operational"`
	InspectionRequired bool       `json:"inspection_required" yaml:"inspection_required"`
	LastInspectionDate *time.Time `json:"last_inspection_date,omitempty" yaml:"last_inspection_date,omitempty"`
	Notes              string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate проверяет обязательные поля маршрута.
func (c CableRoute) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return NewValidationError("route_id", "must not be empty")
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if c.StartFieldID == "" || c.EndFieldID == "" {
		return NewValidationError("field", "start and end field ids are required")
	}
	if !c.Type.Valid() {
		return NewValidationError("cable_type", "must be power, communication or umbilical")
	}
	if c.LengthKm < 0 {
		return NewValidationError("length_km", "must not be negative")
	}
	return nil
}

// CableInspection запись об осмотре участка кабеля.
type CableInspection struct {
	ID              string    `json:"inspection_id"`
	RouteID         string    `json:"route_id"`
	Date            time.Time `json:"inspection_date"`
	Location        *Location `json:"location,omitempty"`
	ImageID         string    `json:"image_id,omitempty"`
	Condition       Condition `json:"condition"`
	DetectedIssues  []string  `json:"detected_issues"`
	Confidence      float64   `json:"confidence_score"`
	Recommendations []string  `json:"recommendations"`
	Inspector       string    `json:"inspector,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// CableStatistics сводка по кабелям и осмотрам.
type CableStatistics struct {
	TotalCables             int64            `json:"total_cables"`
	OperationalCables       int64            `json:"operational_cables"`
	CablesNeedingInspection int64            `json:"cables_needing_inspection"`
	TotalInspections        int64            `json:"total_inspections"`
	ByCondition             map[string]int64 `json:"inspections_by_condition"`
}
