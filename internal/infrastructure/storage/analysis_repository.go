package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// AnalysisRepository хранилище результатов анализа на gorm
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository создаёт хранилище результатов анализа
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save сохраняет результат анализа и, если задан, осмотр кабеля одной транзакцией
func (r *AnalysisRepository) Save(ctx context.Context, analysis *entity.Analysis, inspection *entity.CableInspection) error {
	rec := toAnalysisRecord(analysis)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("save analysis %s: %w", analysis.ID, err)
		}
		if inspection == nil {
			return nil
		}
		return createInspection(tx, toInspectionRecord(inspection))
	})
}

// Get возвращает результат анализа по идентификатору
func (r *AnalysisRepository) Get(ctx context.Context, analysisID string) (*entity.Analysis, error) {
	var rec analysisRecord
	err := r.db.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", analysisID, err)
	}
	a := rec.toEntity()
	return &a, nil
}

var _ port.AnalysisRepository = (*AnalysisRepository)(nil)
