package service

import (
	"cmp"
	"math"
	"slices"

	"subsea-inspector/internal/domain/entity"
)

const (
	// EarthRadiusKm средний радиус Земли.
	EarthRadiusKm = 6371.0
	// distanceEpsilonKm допуск сравнения расстояния с радиусом.
	distanceEpsilonKm = 1e-6
)

// Candidate установка и точка, по которой меряется расстояние.
type Candidate struct {
	Installation entity.Installation
	Location     entity.Location
}

// NewCandidate строит кандидата по собственному положению установки.
func NewCandidate(inst entity.Installation) Candidate {
	return Candidate{Installation: inst, Location: inst.Location}
}

// Match установка и расстояние до неё в километрах.
type Match struct {
	Installation entity.Installation `json:"installation"`
	DistanceKm   float64             `json:"distance_km"`
}

// Distance возвращает расстояние по большому кругу (haversine) в километрах.
func Distance(a, b entity.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180.0
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		// антиподы: ошибка округления может дать h чуть больше 1
		h = 1
	}
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// FindWithinRadius возвращает кандидатов не дальше radiusKm от center,
// отсортированных по расстоянию, при равенстве по идентификатору.
func FindWithinRadius(center entity.Location, radiusKm float64, candidates []Candidate) ([]Match, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return nil, entity.NewValidationError("radius_km", "must be a finite non-negative number")
	}

	matches, err := measure(center, candidates)
	if err != nil {
		return nil, err
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.DistanceKm <= radiusKm+distanceEpsilonKm {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// Nearest возвращает count ближайших к center кандидатов без ограничения радиуса.
func Nearest(center entity.Location, count int, candidates []Candidate) ([]Match, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, entity.NewValidationError("count", "must be at least 1")
	}

	matches, err := measure(center, candidates)
	if err != nil {
		return nil, err
	}
	if len(matches) > count {
		matches = matches[:count]
	}
	return matches, nil
}

func measure(center entity.Location, candidates []Candidate) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Location.Validate(); err != nil {
			return nil, err
		}
		matches = append(matches, Match{
			Installation: c.Installation,
			DistanceKm:   Distance(center, c.Location),
		})
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Installation.ID, b.Installation.ID)
	})
	return matches, nil
}
