package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// topOperators ограничивает разбивку статистики по операторам.
const topOperators = 10

// FieldRepository хранилище месторождений на gorm
type FieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository создаёт хранилище месторождений
func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// List возвращает месторождения по фильтру
func (r *FieldRepository) List(ctx context.Context, filter port.FieldFilter) ([]entity.Field, error) {
	q := r.db.WithContext(ctx).Model(&fieldRecord{}).Preload("Platforms")
	if filter.Operator != "" {
		q = q.Where("operator = ?", filter.Operator)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.SeaArea != "" {
		q = q.Where("sea_area = ?", string(filter.SeaArea))
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(field_id) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var records []fieldRecord
	if err := q.Order("field_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return toFields(records), nil
}

// Get возвращает месторождение по идентификатору
func (r *FieldRepository) Get(ctx context.Context, fieldID string) (*entity.Field, error) {
	var rec fieldRecord
	err := r.db.WithContext(ctx).Preload("Platforms").Where("field_id = ?", fieldID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field %s: %w", fieldID, err)
	}
	f := rec.toEntity()
	return &f, nil
}

// Satellites возвращает спутники хаба
func (r *FieldRepository) Satellites(ctx context.Context, hubID string) ([]entity.Field, error) {
	var records []fieldRecord
	err := r.db.WithContext(ctx).Preload("Platforms").
		Where("hub_field_id = ?", hubID).Order("field_id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("satellites of %s: %w", hubID, err)
	}
	return toFields(records), nil
}

// Save заменяет месторождение и его платформы
func (r *FieldRepository) Save(ctx context.Context, field *entity.Field) error {
	rec := toFieldRecord(field)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("field_id = ?", rec.FieldID).Delete(&platformRecord{}).Error; err != nil {
			return fmt.Errorf("delete platforms of %s: %w", rec.FieldID, err)
		}
		if err := tx.Where("field_id = ?", rec.FieldID).Delete(&fieldRecord{}).Error; err != nil {
			return fmt.Errorf("delete field %s: %w", rec.FieldID, err)
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create field %s: %w", rec.FieldID, err)
		}
		return nil
	})
}

type groupCount struct {
	Label string
	Total int64
}

// Statistics считает сводку по месторождениям и платформам
func (r *FieldRepository) Statistics(ctx context.Context) (*entity.FieldStatistics, error) {
	db := r.db.WithContext(ctx)
	stats := &entity.FieldStatistics{
		BySeaArea:  make(map[string]int64),
		ByOperator: make(map[string]int64),
	}

	if err := db.Model(&fieldRecord{}).Count(&stats.TotalFields).Error; err != nil {
		return nil, fmt.Errorf("count fields: %w", err)
	}
	if err := db.Model(&fieldRecord{}).Where("status = ?", string(entity.FieldProducing)).
		Count(&stats.ProducingFields).Error; err != nil {
		return nil, fmt.Errorf("count producing fields: %w", err)
	}

	var areas []groupCount
	if err := db.Model(&fieldRecord{}).Select("sea_area AS label, COUNT(*) AS total").
		Group("sea_area").Scan(&areas).Error; err != nil {
		return nil, fmt.Errorf("group by sea area: %w", err)
	}
	for _, g := range areas {
		stats.BySeaArea[g.Label] = g.Total
	}

	var operators []groupCount
	if err := db.Model(&fieldRecord{}).Select("operator AS label, COUNT(*) AS total").
		Group("operator").Order("total DESC, label").Limit(topOperators).Scan(&operators).Error; err != nil {
		return nil, fmt.Errorf("group by operator: %w", err)
	}
	for _, g := range operators {
		stats.ByOperator[g.Label] = g.Total
	}

	if err := db.Model(&platformRecord{}).Count(&stats.TotalPlatforms).Error; err != nil {
		return nil, fmt.Errorf("count platforms: %w", err)
	}
	if err := db.Model(&platformRecord{}).Where("operational = ?", true).
		Count(&stats.OperationalPlatforms).Error; err != nil {
		return nil, fmt.Errorf("count operational platforms: %w", err)
	}
	return stats, nil
}

func toFields(records []fieldRecord) []entity.Field {
	fields := make([]entity.Field, 0, len(records))
	for _, rec := range records {
		fields = append(fields, rec.toEntity())
	}
	return fields
}

var _ port.FieldRepository = (*FieldRepository)(nil)
