package storage

import (
	"time"

	"subsea-inspector/internal/domain/entity"
)

type fieldRecord struct {
	ID                  uint             `gorm:"primaryKey"`
	FieldID             string           `gorm:"size:50;uniqueIndex;not null"`
	Name                string           `gorm:"size:100;not null"`
	Operator            string           `gorm:"size:100;index"`
	Status              string           `gorm:"size:20;index"`
	SeaArea             string           `gorm:"size:20;index"`
	ResourceType        string           `gorm:"size:30"`
	DiscoveryYear       *int
	ProductionStartYear *int
	Latitude            float64 `gorm:"not null"`
	Longitude           float64 `gorm:"not null"`
	WaterDepthMin       *float64
	WaterDepthMax       *float64
	DistanceFromShoreKm *float64
	NearestCity         string   `gorm:"size:100"`
	Blocks              []string `gorm:"serializer:json"`
	HubFieldID          string   `gorm:"size:50;index"`
	Description         string   `gorm:"type:text"`
	EstimatedMmboe      *float64
	Platforms           []platformRecord `gorm:"foreignKey:FieldID;references:FieldID"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (fieldRecord) TableName() string { return "oil_fields" }

type platformRecord struct {
	ID               uint   `gorm:"primaryKey"`
	FieldID          string `gorm:"size:50;index;not null"`
	Name             string `gorm:"size:100;not null"`
	PlatformType     string `gorm:"size:30;index"`
	InstallationYear *int
	Operational      bool `gorm:"index"`
	Unmanned         bool
	Description      string `gorm:"type:text"`
	CreatedAt        time.Time
}

func (platformRecord) TableName() string { return "platforms" }

type cableRouteRecord struct {
	ID                 uint   `gorm:"primaryKey"`
	RouteID            string `gorm:"size:50;uniqueIndex;not null"`
	Name               string `gorm:"size:100;not null"`
	StartFieldID       string `gorm:"size:50;index;not null"`
	EndFieldID         string `gorm:"size:50;index;not null"`
	CableType          string `gorm:"size:30;index;not null"`
	LengthKm           float64
	InstallationYear   *int
	Operational        bool
	InspectionRequired bool `gorm:"index"`
	LastInspectionDate *time.Time
	Notes              string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (cableRouteRecord) TableName() string { return "cable_routes" }

type cableInspectionRecord struct {
	ID              uint      `gorm:"primaryKey"`
	InspectionID    string    `gorm:"size:50;uniqueIndex;not null"`
	RouteID         string    `gorm:"size:50;index;not null"`
	InspectionDate  time.Time `gorm:"index;not null"`
	Latitude        *float64
	Longitude       *float64
	Depth           *float64
	ImageID         string   `gorm:"size:100"`
	Condition       string   `gorm:"column:overall_condition;size:20;index"`
	DetectedIssues  []string `gorm:"serializer:json"`
	ConfidenceScore float64
	Recommendations []string `gorm:"serializer:json"`
	Inspector       string   `gorm:"size:100"`
	Notes           string   `gorm:"type:text"`
	CreatedAt       time.Time
}

func (cableInspectionRecord) TableName() string { return "cable_inspections" }

type analysisRecord struct {
	ID              uint      `gorm:"primaryKey"`
	AnalysisID      string    `gorm:"size:50;uniqueIndex;not null"`
	Status          string    `gorm:"size:20"`
	ProcessedAt     time.Time `gorm:"index"`
	Condition       string    `gorm:"column:overall_condition;size:20;index"`
	Confidence      float64
	Defects         []entity.Defect `gorm:"serializer:json"`
	Recommendations []string        `gorm:"serializer:json"`
	Findings        string          `gorm:"type:text"`
	Latitude        *float64
	Longitude       *float64
	Depth           *float64
	CableRouteID    string `gorm:"size:50;index"`
	CreatedAt       time.Time
}

func (analysisRecord) TableName() string { return "analyses" }

func toFieldRecord(f *entity.Field) fieldRecord {
	rec := fieldRecord{
		FieldID:             f.ID,
		Name:                f.Name,
		Operator:            f.Operator,
		Status:              string(f.Status),
		SeaArea:             string(f.Location.SeaArea),
		ResourceType:        f.ResourceType,
		DiscoveryYear:       f.DiscoveryYear,
		ProductionStartYear: f.ProductionStartYear,
		Latitude:            f.Location.Latitude,
		Longitude:           f.Location.Longitude,
		WaterDepthMin:       f.Location.WaterDepthMin,
		WaterDepthMax:       f.Location.WaterDepthMax,
		DistanceFromShoreKm: f.Location.DistanceFromShoreKm,
		NearestCity:         f.Location.NearestCity,
		Blocks:              f.Location.Blocks,
		HubFieldID:          f.HubFieldID,
		Description:         f.Description,
		EstimatedMmboe:      f.EstimatedMmboe,
	}
	for _, p := range f.Platforms {
		rec.Platforms = append(rec.Platforms, platformRecord{
			FieldID:          f.ID,
			Name:             p.Name,
			PlatformType:     string(p.Type),
			InstallationYear: p.InstallationYear,
			Operational:      p.Operational,
			Unmanned:         p.Unmanned,
			Description:      p.Description,
		})
	}
	return rec
}

func (r fieldRecord) toEntity() entity.Field {
	f := entity.Field{
		ID:                  r.FieldID,
		Name:                r.Name,
		Operator:            r.Operator,
		Status:              entity.FieldStatus(r.Status),
		ResourceType:        r.ResourceType,
		DiscoveryYear:       r.DiscoveryYear,
		ProductionStartYear: r.ProductionStartYear,
		Location: entity.FieldLocation{
			Location:            entity.Location{Latitude: r.Latitude, Longitude: r.Longitude},
			Blocks:              r.Blocks,
			WaterDepthMin:       r.WaterDepthMin,
			WaterDepthMax:       r.WaterDepthMax,
			DistanceFromShoreKm: r.DistanceFromShoreKm,
			NearestCity:         r.NearestCity,
			SeaArea:             entity.SeaArea(r.SeaArea),
		},
		Platforms:      make([]entity.Platform, 0, len(r.Platforms)),
		HubFieldID:     r.HubFieldID,
		Description:    r.Description,
		EstimatedMmboe: r.EstimatedMmboe,
	}
	for _, p := range r.Platforms {
		f.Platforms = append(f.Platforms, entity.Platform{
			Name:             p.Name,
			Type:             entity.PlatformType(p.PlatformType),
			InstallationYear: p.InstallationYear,
			Operational:      p.Operational,
			Unmanned:         p.Unmanned,
			Description:      p.Description,
		})
	}
	return f
}

func toCableRouteRecord(c *entity.CableRoute) cableRouteRecord {
	return cableRouteRecord{
		RouteID:            c.ID,
		Name:               c.Name,
		StartFieldID:       c.StartFieldID,
		EndFieldID:         c.EndFieldID,
		CableType:          string(c.Type),
		LengthKm:           c.LengthKm,
		InstallationYear:   c.InstallationYear,
		Operational:        c.Operational,
		InspectionRequired: c.InspectionRequired,
		LastInspectionDate: c.LastInspectionDate,
		Notes:              c.Notes,
	}
}

func (r cableRouteRecord) toEntity() entity.CableRoute {
	return entity.CableRoute{
		ID:                 r.RouteID,
		Name:               r.Name,
		StartFieldID:       r.StartFieldID,
		EndFieldID:         r.EndFieldID,
		Type:               entity.CableType(r.CableType),
		LengthKm:           r.LengthKm,
		InstallationYear:   r.InstallationYear,
		Operational:        r.Operational,
		InspectionRequired: r.InspectionRequired,
		LastInspectionDate: r.LastInspectionDate,
		Notes:              r.Notes,
	}
}

func toInspectionRecord(i *entity.CableInspection) cableInspectionRecord {
	rec := cableInspectionRecord{
		InspectionID:    i.ID,
		RouteID:         i.RouteID,
		InspectionDate:  i.Date,
		ImageID:         i.ImageID,
		Condition:       string(i.Condition),
		DetectedIssues:  i.DetectedIssues,
		ConfidenceScore: i.Confidence,
		Recommendations: i.Recommendations,
		Inspector:       i.Inspector,
		Notes:           i.Notes,
	}
	rec.Latitude, rec.Longitude, rec.Depth = splitLocation(i.Location)
	return rec
}

func (r cableInspectionRecord) toEntity() entity.CableInspection {
	return entity.CableInspection{
		ID:              r.InspectionID,
		RouteID:         r.RouteID,
		Date:            r.InspectionDate,
		Location:        joinLocation(r.Latitude, r.Longitude, r.Depth),
		ImageID:         r.ImageID,
		Condition:       entity.Condition(r.Condition),
		DetectedIssues:  nonNil(r.DetectedIssues),
		Confidence:      r.ConfidenceScore,
		Recommendations: nonNil(r.Recommendations),
		Inspector:       r.Inspector,
		Notes:           r.Notes,
	}
}

func toAnalysisRecord(a *entity.Analysis) analysisRecord {
	rec := analysisRecord{
		AnalysisID:      a.ID,
		Status:          a.Status,
		ProcessedAt:     a.ProcessedAt,
		Condition:       string(a.Result.OverallCondition),
		Confidence:      a.Result.Confidence,
		Defects:         a.Result.Defects,
		Recommendations: a.Result.Recommendations,
		Findings:        a.Findings,
		CableRouteID:    a.CableRouteID,
	}
	rec.Latitude, rec.Longitude, rec.Depth = splitLocation(a.Location)
	return rec
}

func (r analysisRecord) toEntity() entity.Analysis {
	defects := r.Defects
	if defects == nil {
		defects = []entity.Defect{}
	}
	return entity.Analysis{
		ID:          r.AnalysisID,
		Status:      r.Status,
		ProcessedAt: r.ProcessedAt,
		Result: entity.InspectionResult{
			OverallCondition: entity.Condition(r.Condition),
			Confidence:       r.Confidence,
			Defects:          defects,
			Recommendations:  nonNil(r.Recommendations),
		},
		Findings:     r.Findings,
		Location:     joinLocation(r.Latitude, r.Longitude, r.Depth),
		CableRouteID: r.CableRouteID,
	}
}

func splitLocation(l *entity.Location) (lat, lon, depth *float64) {
	if l == nil {
		return nil, nil, nil
	}
	la, lo := l.Latitude, l.Longitude
	return &la, &lo, l.Depth
}

func joinLocation(lat, lon, depth *float64) *entity.Location {
	if lat == nil || lon == nil {
		return nil
	}
	return &entity.Location{Latitude: *lat, Longitude: *lon, Depth: depth}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
