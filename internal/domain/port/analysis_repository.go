package port

import (
	"context"

	"subsea-inspector/internal/domain/entity"
)

// AnalysisRepository интерфейс хранилища результатов анализа
type AnalysisRepository interface {
	// Save сохраняет анализ. Непустой inspection пишется в той же транзакции:
	// либо сохраняются оба, либо ничего.
	Save(ctx context.Context, analysis *entity.Analysis, inspection *entity.CableInspection) error
	Get(ctx context.Context, analysisID string) (*entity.Analysis, error)
}
