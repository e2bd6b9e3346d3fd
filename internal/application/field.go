package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/metrics"
)

const candidatesKey = "field_candidates"

// FieldMatch месторождение и расстояние до него.
type FieldMatch struct {
	Field      entity.Field `json:"field"`
	DistanceKm float64      `json:"distance_km"`
}

// fieldSnapshot снимок месторождений для геопоиска.
type fieldSnapshot struct {
	fields     map[string]entity.Field
	candidates []service.Candidate
}

type FieldService struct {
	repo     port.FieldRepository
	cache    *cache.Cache
	defaults SearchDefaults
	log      *slog.Logger
}

// NewFieldService создаёт сервис месторождений. Снимок для геопоиска живёт ttl.
func NewFieldService(repo port.FieldRepository, defaults SearchDefaults, ttl time.Duration, log *slog.Logger) *FieldService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &FieldService{
		repo: repo,
		// без фоновой очистки: в кэше один ключ
		cache:    cache.New(ttl, 0),
		defaults: defaults,
		log:      log,
	}
}

// Defaults возвращает параметры поиска по умолчанию.
func (s *FieldService) Defaults() SearchDefaults {
	return s.defaults
}

func (s *FieldService) List(ctx context.Context, filter port.FieldFilter) ([]entity.Field, error) {
	if filter.Skip < 0 || filter.Limit < 0 {
		return nil, entity.NewValidationError("pagination", "skip and limit must not be negative")
	}
	return s.repo.List(ctx, filter)
}

func (s *FieldService) Get(ctx context.Context, fieldID string) (*entity.Field, error) {
	return s.repo.Get(ctx, fieldID)
}

// Save проверяет и сохраняет месторождение, сбрасывая снимок геопоиска.
func (s *FieldService) Save(ctx context.Context, field *entity.Field) error {
	if err := field.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, field); err != nil {
		return err
	}
	s.cache.Delete(candidatesKey)
	return nil
}

// Network возвращает хаб и спутники месторождения.
func (s *FieldService) Network(ctx context.Context, fieldID string) (*entity.FieldNetwork, error) {
	field, err := s.repo.Get(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	network := &entity.FieldNetwork{Field: *field}
	if field.HubFieldID != "" {
		network.IsSatellite = true
		hub, err := s.repo.Get(ctx, field.HubFieldID)
		switch {
		case err == nil:
			network.Hub = hub
		case errors.Is(err, port.ErrNotFound):
			s.log.Warn("hub field is missing", "field_id", fieldID, "hub_field", field.HubFieldID)
		default:
			return nil, err
		}
	}

	satellites, err := s.repo.Satellites(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	network.Satellites = satellites
	network.IsHub = len(satellites) > 0
	return network, nil
}

// Nearby возвращает месторождения в радиусе radiusKm, ближние первыми.
func (s *FieldService) Nearby(ctx context.Context, center entity.Location, radiusKm float64) ([]FieldMatch, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := service.FindWithinRadius(center, radiusKm, snap.candidates)
	if err != nil {
		return nil, err
	}
	metrics.ObserveProximityQuery("fields")
	return snap.resolve(matches), nil
}

// Nearest возвращает count ближайших месторождений.
func (s *FieldService) Nearest(ctx context.Context, center entity.Location, count int) ([]FieldMatch, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := service.Nearest(center, count, snap.candidates)
	if err != nil {
		return nil, err
	}
	metrics.ObserveProximityQuery("fields")
	return snap.resolve(matches), nil
}

func (s *FieldService) Statistics(ctx context.Context) (*entity.FieldStatistics, error) {
	return s.repo.Statistics(ctx)
}

func (s *FieldService) snapshot(ctx context.Context) (*fieldSnapshot, error) {
	if cached, ok := s.cache.Get(candidatesKey); ok {
		return cached.(*fieldSnapshot), nil
	}

	fields, err := s.repo.List(ctx, port.FieldFilter{})
	if err != nil {
		return nil, fmt.Errorf("load field candidates: %w", err)
	}
	snap := &fieldSnapshot{
		fields:     make(map[string]entity.Field, len(fields)),
		candidates: make([]service.Candidate, 0, len(fields)),
	}
	for _, f := range fields {
		snap.fields[f.ID] = f
		snap.candidates = append(snap.candidates, service.NewCandidate(f.Installation()))
	}
	s.cache.SetDefault(candidatesKey, snap)
	s.log.Debug("field candidates loaded", "count", len(fields))
	return snap, nil
}

func (snap *fieldSnapshot) resolve(matches []service.Match) []FieldMatch {
	out := make([]FieldMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, FieldMatch{Field: snap.fields[m.Installation.ID], DistanceKm: m.DistanceKm})
	}
	return out
}
