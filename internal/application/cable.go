package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/metrics"
)

// InspectionMatch осмотр и расстояние до точки поиска.
type InspectionMatch struct {
	Inspection entity.CableInspection `json:"inspection"`
	DistanceKm float64                `json:"distance_km"`
}

type CableService struct {
	repo     port.CableRepository
	fields   port.FieldRepository
	defaults SearchDefaults
	log      *slog.Logger
	now      func() time.Time
}

// NewCableService создаёт сервис кабельных маршрутов и осмотров.
func NewCableService(repo port.CableRepository, fields port.FieldRepository, defaults SearchDefaults, log *slog.Logger) *CableService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CableService{
		repo:     repo,
		fields:   fields,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// Defaults возвращает параметры поиска по умолчанию.
func (s *CableService) Defaults() SearchDefaults {
	return s.defaults
}

func (s *CableService) List(ctx context.Context, operational *bool) ([]entity.CableRoute, error) {
	return s.repo.ListRoutes(ctx, operational)
}

func (s *CableService) Get(ctx context.Context, routeID string) (*entity.CableRoute, error) {
	return s.repo.GetRoute(ctx, routeID)
}

// Create регистрирует новый маршрут между двумя известными месторождениями.
func (s *CableService) Create(ctx context.Context, route *entity.CableRoute) error {
	if err := route.Validate(); err != nil {
		return err
	}

	_, err := s.repo.GetRoute(ctx, route.ID)
	switch {
	case err == nil:
		return entity.NewValidationError("route_id", "route "+route.ID+" already exists")
	case !errors.Is(err, port.ErrNotFound):
		return err
	}

	for name, id := range map[string]string{"start_field_id": route.StartFieldID, "end_field_id": route.EndFieldID} {
		if _, err := s.fields.Get(ctx, id); err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return entity.NewValidationError(name, "unknown field "+id)
			}
			return err
		}
	}

	if err := s.repo.SaveRoute(ctx, route); err != nil {
		return err
	}
	s.log.Info("cable route created", "route_id", route.ID, "cable_type", route.Type)
	return nil
}

// RoutesForField возвращает маршруты, связанные с месторождением.
func (s *CableService) RoutesForField(ctx context.Context, fieldID string) ([]entity.CableRoute, error) {
	if _, err := s.fields.Get(ctx, fieldID); err != nil {
		return nil, err
	}
	return s.repo.RoutesForField(ctx, fieldID)
}

// Inspections возвращает осмотры маршрута, новые первыми.
func (s *CableService) Inspections(ctx context.Context, routeID string, limit int) ([]entity.CableInspection, error) {
	if limit < 0 {
		return nil, entity.NewValidationError("limit", "must not be negative")
	}
	if _, err := s.repo.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}
	return s.repo.Inspections(ctx, port.InspectionFilter{RouteID: routeID, Limit: limit})
}

// NeedingInspection возвращает маршруты без осмотра за последние days дней.
func (s *CableService) NeedingInspection(ctx context.Context, days int) ([]entity.CableRoute, error) {
	if days < 1 {
		return nil, entity.NewValidationError("days", "must be at least 1")
	}
	return s.repo.RoutesNeedingInspection(ctx, daysAgo(s.now(), days))
}

// RecentInspections возвращает осмотры за последние days дней.
func (s *CableService) RecentInspections(ctx context.Context, days int, condition entity.Condition, limit int) ([]entity.CableInspection, error) {
	if days < 1 {
		return nil, entity.NewValidationError("days", "must be at least 1")
	}
	if condition != "" && !condition.Valid() {
		return nil, entity.NewValidationError("condition", "unknown condition "+string(condition))
	}
	if limit < 0 {
		return nil, entity.NewValidationError("limit", "must not be negative")
	}
	return s.repo.Inspections(ctx, port.InspectionFilter{
		Condition: condition,
		Since:     daysAgo(s.now(), days),
		Limit:     limit,
	})
}

// NearbyInspections возвращает осмотры с координатами в радиусе radiusKm.
func (s *CableService) NearbyInspections(ctx context.Context, center entity.Location, radiusKm float64) ([]InspectionMatch, error) {
	located, err := s.repo.Inspections(ctx, port.InspectionFilter{LocatedOnly: true})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entity.CableInspection, len(located))
	candidates := make([]service.Candidate, 0, len(located))
	for _, insp := range located {
		byID[insp.ID] = insp
		candidates = append(candidates, service.NewCandidate(entity.Installation{
			ID:       insp.ID,
			Name:     insp.RouteID,
			Location: *insp.Location,
		}))
	}

	matches, err := service.FindWithinRadius(center, radiusKm, candidates)
	if err != nil {
		return nil, err
	}
	metrics.ObserveProximityQuery("inspections")

	out := make([]InspectionMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, InspectionMatch{Inspection: byID[m.Installation.ID], DistanceKm: m.DistanceKm})
	}
	return out, nil
}

// Statistics возвращает сводку; просроченными считаются маршруты без осмотра дольше InspectionMaxAge.
func (s *CableService) Statistics(ctx context.Context) (*entity.CableStatistics, error) {
	stats, err := s.repo.Statistics(ctx, s.defaults.inspectionCutoff(s.now()))
	if err != nil {
		return nil, fmt.Errorf("cable statistics: %w", err)
	}
	return stats, nil
}
