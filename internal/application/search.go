package app

import "time"

// SearchDefaults значения по умолчанию для геопоиска и сроков осмотра.
type SearchDefaults struct {
	RadiusKm           float64 `mapstructure:"default_radius_km"`
	InspectionRadiusKm float64 `mapstructure:"inspection_radius_km"`
	NearestCount       int     `mapstructure:"nearest_count"`
	InspectionMaxAge   int     `mapstructure:"inspection_max_age_days"` // в днях
}

// DefaultSearchDefaults возвращает значения, принятые для норвежского шельфа.
func DefaultSearchDefaults() SearchDefaults {
	return SearchDefaults{
		RadiusKm:           50,
		InspectionRadiusKm: 10,
		NearestCount:       5,
		InspectionMaxAge:   180,
	}
}

func (d SearchDefaults) inspectionCutoff(now time.Time) time.Time {
	return daysAgo(now, d.InspectionMaxAge)
}

// daysAgo всегда возвращает UTC: даты осмотров хранятся в UTC, а sqlite сравнивает их как строки.
func daysAgo(now time.Time, days int) time.Time {
	return now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
}
