package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"subsea-inspector/internal/domain/entity"
)

//go:embed data/norwegian_fields.yaml
var norwegianFields []byte

// Dataset набор месторождений и кабельных маршрутов для начальной загрузки.
type Dataset struct {
	Fields      []entity.Field      `yaml:"fields"`
	CableRoutes []entity.CableRoute `yaml:"cable_routes"`
}

// FieldWriter сохраняет месторождение.
type FieldWriter interface {
	Save(ctx context.Context, field *entity.Field) error
}

// RouteWriter создаёт или обновляет маршрут.
type RouteWriter interface {
	SaveRoute(ctx context.Context, route *entity.CableRoute) error
}

// Summary итог загрузки.
type Summary struct {
	Fields int
	Routes int
}

// Default возвращает встроенный набор данных по норвежскому шельфу.
func Default() (*Dataset, error) {
	return Load(bytes.NewReader(norwegianFields))
}

// Load читает набор из YAML. Неизвестные ключи считаются ошибкой.
func Load(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate проверяет записи и ссылки между ними внутри набора.
func (ds *Dataset) Validate() error {
	ids := make(map[string]bool, len(ds.Fields))
	for i := range ds.Fields {
		f := &ds.Fields[i]
		if err := f.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", f.ID, err)
		}
		if ids[f.ID] {
			return fmt.Errorf("field %q: %w", f.ID, entity.NewValidationError("field_id", "duplicate"))
		}
		ids[f.ID] = true
	}
	for _, f := range ds.Fields {
		if f.HubFieldID != "" && !ids[f.HubFieldID] {
			return fmt.Errorf("field %q: %w", f.ID, entity.NewValidationError("hub_field", "unknown field "+f.HubFieldID))
		}
	}

	routes := make(map[string]bool, len(ds.CableRoutes))
	for _, r := range ds.CableRoutes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("cable route %q: %w", r.ID, err)
		}
		if routes[r.ID] {
			return fmt.Errorf("cable route %q: %w", r.ID, entity.NewValidationError("route_id", "duplicate"))
		}
		routes[r.ID] = true
		for _, end := range []string{r.StartFieldID, r.EndFieldID} {
			if !ids[end] {
				return fmt.Errorf("cable route %q: %w", r.ID, entity.NewValidationError("field", "unknown field "+end))
			}
		}
	}
	return nil
}

// Apply записывает набор. Повторная загрузка перезаписывает те же записи.
func Apply(ctx context.Context, ds *Dataset, fields FieldWriter, routes RouteWriter) (Summary, error) {
	var sum Summary
	for i := range ds.Fields {
		if err := fields.Save(ctx, &ds.Fields[i]); err != nil {
			return sum, fmt.Errorf("save field %s: %w", ds.Fields[i].ID, err)
		}
		sum.Fields++
	}
	for i := range ds.CableRoutes {
		if err := routes.SaveRoute(ctx, &ds.CableRoutes[i]); err != nil {
			return sum, fmt.Errorf("save cable route %s: %w", ds.CableRoutes[i].ID, err)
		}
		sum.Routes++
	}
	return sum, nil
}
