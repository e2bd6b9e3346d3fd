package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// CableRepository хранилище кабельных маршрутов и осмотров на gorm
type CableRepository struct {
	db *gorm.DB
}

// NewCableRepository создаёт хранилище кабелей
func NewCableRepository(db *gorm.DB) *CableRepository {
	return &CableRepository{db: db}
}

// ListRoutes возвращает маршруты, при необходимости только действующие или выведенные
func (r *CableRepository) ListRoutes(ctx context.Context, operational *bool) ([]entity.CableRoute, error) {
	q := r.db.WithContext(ctx).Model(&cableRouteRecord{})
	if operational != nil {
		q = q.Where("operational = ?", *operational)
	}
	var records []cableRouteRecord
	if err := q.Order("route_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list cable routes: %w", err)
	}
	return toRoutes(records), nil
}

// GetRoute возвращает маршрут по идентификатору
func (r *CableRepository) GetRoute(ctx context.Context, routeID string) (*entity.CableRoute, error) {
	var rec cableRouteRecord
	err := r.db.WithContext(ctx).Where("route_id = ?", routeID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cable route %s: %w", routeID, err)
	}
	route := rec.toEntity()
	return &route, nil
}

// SaveRoute создаёт маршрут или перезаписывает существующий
func (r *CableRepository) SaveRoute(ctx context.Context, route *entity.CableRoute) error {
	rec := toCableRouteRecord(route)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing cableRouteRecord
		err := tx.Where("route_id = ?", rec.RouteID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&rec).Error
		case err != nil:
			return fmt.Errorf("lookup cable route %s: %w", rec.RouteID, err)
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return tx.Save(&rec).Error
	})
}

// RoutesForField возвращает входящие и исходящие маршруты месторождения
func (r *CableRepository) RoutesForField(ctx context.Context, fieldID string) ([]entity.CableRoute, error) {
	var records []cableRouteRecord
	err := r.db.WithContext(ctx).
		Where("start_field_id = ? OR end_field_id = ?", fieldID, fieldID).
		Order("route_id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("cable routes for %s: %w", fieldID, err)
	}
	return toRoutes(records), nil
}

// RoutesNeedingInspection возвращает маршруты, требующие осмотра и не осмотренные после cutoff
func (r *CableRepository) RoutesNeedingInspection(ctx context.Context, cutoff time.Time) ([]entity.CableRoute, error) {
	var records []cableRouteRecord
	if err := r.needingInspection(r.db.WithContext(ctx), cutoff).Order("route_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("cable routes needing inspection: %w", err)
	}
	return toRoutes(records), nil
}

func (r *CableRepository) needingInspection(db *gorm.DB, cutoff time.Time) *gorm.DB {
	return db.Model(&cableRouteRecord{}).
		Where("inspection_required = ?", true).
		Where("last_inspection_date IS NULL OR last_inspection_date < ?", cutoff)
}

// SaveInspection сохраняет осмотр и обновляет дату последнего осмотра маршрута
func (r *CableRepository) SaveInspection(ctx context.Context, inspection *entity.CableInspection) error {
	rec := toInspectionRecord(inspection)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createInspection(tx, rec)
	})
}

// createInspection вызывается внутри транзакции tx.
func createInspection(tx *gorm.DB, rec cableInspectionRecord) error {
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("create inspection %s: %w", rec.InspectionID, err)
	}
	err := tx.Model(&cableRouteRecord{}).
		Where("route_id = ?", rec.RouteID).
		Where("last_inspection_date IS NULL OR last_inspection_date < ?", rec.InspectionDate).
		Update("last_inspection_date", rec.InspectionDate).Error
	if err != nil {
		return fmt.Errorf("update last inspection of %s: %w", rec.RouteID, err)
	}
	return nil
}

// Inspections возвращает осмотры по фильтру, новые первыми
func (r *CableRepository) Inspections(ctx context.Context, filter port.InspectionFilter) ([]entity.CableInspection, error) {
	q := r.db.WithContext(ctx).Model(&cableInspectionRecord{})
	if filter.RouteID != "" {
		q = q.Where("route_id = ?", filter.RouteID)
	}
	if filter.Condition != "" {
		q = q.Where("overall_condition = ?", string(filter.Condition))
	}
	if !filter.Since.IsZero() {
		q = q.Where("inspection_date >= ?", filter.Since)
	}
	if filter.LocatedOnly {
		q = q.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var records []cableInspectionRecord
	if err := q.Order("inspection_date DESC, inspection_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	inspections := make([]entity.CableInspection, 0, len(records))
	for _, rec := range records {
		inspections = append(inspections, rec.toEntity())
	}
	return inspections, nil
}

// Statistics считает сводку по кабелям и осмотрам
func (r *CableRepository) Statistics(ctx context.Context, cutoff time.Time) (*entity.CableStatistics, error) {
	db := r.db.WithContext(ctx)
	stats := &entity.CableStatistics{ByCondition: make(map[string]int64)}

	if err := db.Model(&cableRouteRecord{}).Count(&stats.TotalCables).Error; err != nil {
		return nil, fmt.Errorf("count cables: %w", err)
	}
	if err := db.Model(&cableRouteRecord{}).Where("operational = ?", true).
		Count(&stats.OperationalCables).Error; err != nil {
		return nil, fmt.Errorf("count operational cables: %w", err)
	}
	if err := r.needingInspection(db, cutoff).Count(&stats.CablesNeedingInspection).Error; err != nil {
		return nil, fmt.Errorf("count cables needing inspection: %w", err)
	}
	if err := db.Model(&cableInspectionRecord{}).Count(&stats.TotalInspections).Error; err != nil {
		return nil, fmt.Errorf("count inspections: %w", err)
	}

	var groups []groupCount
	if err := db.Model(&cableInspectionRecord{}).Select("overall_condition AS label, COUNT(*) AS total").
		Group("overall_condition").Scan(&groups).Error; err != nil {
		return nil, fmt.Errorf("group inspections by condition: %w", err)
	}
	for _, g := range groups {
		stats.ByCondition[g.Label] = g.Total
	}
	return stats, nil
}

func toRoutes(records []cableRouteRecord) []entity.CableRoute {
	routes := make([]entity.CableRoute, 0, len(records))
	for _, rec := range records {
		routes = append(routes, rec.toEntity())
	}
	return routes
}

var _ port.CableRepository = (*CableRepository)(nil)
