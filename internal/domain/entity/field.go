package entity

import "strings"

// FieldStatus эксплуатационный статус месторождения
type FieldStatus string

const (
	FieldProducing        FieldStatus = "producing"
	FieldPlanned          FieldStatus = "planned"
	FieldUnderDevelopment FieldStatus = "under_development"
	FieldShutdown         FieldStatus = "shutdown"
	FieldDecommissioned   FieldStatus = "decommissioned"
)

// SeaArea район норвежского континентального шельфа
type SeaArea string

const (
	SeaNorth     SeaArea = "north_sea"
	SeaNorwegian SeaArea = "norwegian_sea"
	SeaBarents   SeaArea = "barents_sea"
)

// PlatformType тип морской платформы
type PlatformType string

const (
	PlatformCondeep         PlatformType = "condeep"
	PlatformSteelJacket     PlatformType = "steel_jacket"
	PlatformFPSO            PlatformType = "fpso"
	PlatformSemiSubmersible PlatformType = "semi_submersible"
	PlatformTLP             PlatformType = "tlp"
	PlatformSpar            PlatformType = "spar"
	PlatformSubsea          PlatformType = "subsea"
	PlatformUnmanned        PlatformType = "unmanned"
	PlatformOnshore         PlatformType = "onshore"
)

// Platform отдельная платформа или подводная установка месторождения.
type Platform struct {
	Name             string       `json:"name" yaml:"name"`
	Type             PlatformType `json:"platform_type" yaml:"platform_type"`
	InstallationYear *int         `json:"installation_year,omitempty" yaml:"installation_year,omitempty"`
	Operational      bool         `json:"operational" yaml:"operational"`
	Unmanned         bool         `json:"unmanned" yaml:"unmanned"`
	Description      string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// FieldLocation положение месторождения и сопутствующие сведения.
type FieldLocation struct {
	Location            `yaml:",inline"`
	Blocks              []string `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	WaterDepthMin       *float64 `json:"water_depth_min,omitempty" yaml:"water_depth_min,omitempty"`
	WaterDepthMax       *float64 `json:"water_depth_max,omitempty" yaml:"water_depth_max,omitempty"`
	DistanceFromShoreKm *float64 `json:"distance_from_shore_km,omitempty" yaml:"distance_from_shore_km,omitempty"`
	NearestCity         string   `json:"nearest_city,omitempty" yaml:"nearest_city,omitempty"`
	SeaArea             SeaArea  `json:"sea_area" yaml:"sea_area"`
}

// Field нефтегазовое месторождение.
type Field struct {
	ID                  string        `json:"field_id" yaml:"field_id"`
	Name                string        `json:"name" yaml:"name"`
	Operator            string        `json:"operator" yaml:"operator"`
	Status              FieldStatus   `json:"status" yaml:"status"`
	ResourceType        string        `json:"resource_type" yaml:"resource_type"`
	DiscoveryYear       *int          `json:"discovery_year,omitempty" yaml:"discovery_year,omitempty"`
	ProductionStartYear *int          `json:"production_start_year,omitempty" yaml:"production_start_year,omitempty"`
	Location            FieldLocation `json:"location" yaml:"location"`
	Platforms           []Platform    `json:"platforms" yaml:"platforms"`
	HubFieldID          string        `json:"hub_field,omitempty" yaml:"hub_field,omitempty"`
	Description         string        `json:"description,omitempty" yaml:"description,omitempty"`
	EstimatedMmboe      *float64      `json:"estimated_resources_mmboe,omitempty" yaml:"estimated_resources_mmboe,omitempty"`
}

// Validate проверяет обязательные поля и координаты месторождения.
func (f Field) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return NewValidationError("field_id", "must not be empty")
	}
	if strings.TrimSpace(f.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if f.HubFieldID == f.ID {
		return NewValidationError("hub_field", "field cannot be its own hub")
	}
	return f.Location.Validate()
}

// Installation проецирует месторождение на установку для геопоиска.
func (f Field) Installation() Installation {
	return Installation{ID: f.ID, Name: f.Name, Location: f.Location.Location}
}

// FieldNetwork хаб и связанные с ним спутниковые месторождения.
type FieldNetwork struct {
	Field       Field   `json:"field"`
	Hub         *Field  `json:"hub,omitempty"`
	Satellites  []Field `json:"satellites"`
	IsHub       bool    `json:"is_hub"`
	IsSatellite bool    `json:"is_satellite"`
}

// FieldStatistics сводка по месторождениям.
type FieldStatistics struct {
	TotalFields          int64            `json:"total_fields"`
	ProducingFields      int64            `json:"producing_fields"`
	BySeaArea            map[string]int64 `json:"by_sea_area"`
	ByOperator           map[string]int64 `json:"by_operator"`
	TotalPlatforms       int64            `json:"total_platforms"`
	OperationalPlatforms int64            `json:"operational_platforms"`
}
