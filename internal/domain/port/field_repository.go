package port

import (
	"context"

	"subsea-inspector/internal/domain/entity"
)

// FieldFilter условия выборки месторождений. Пустые поля не ограничивают выборку.
type FieldFilter struct {
	Operator string
	Status   entity.FieldStatus
	SeaArea  entity.SeaArea
	Query    string // подстрока в названии, идентификаторе или описании
	Skip     int
	Limit    int
}

// FieldRepository интерфейс хранилища месторождений
type FieldRepository interface {
	// List возвращает месторождения по фильтру, упорядоченные по идентификатору
	List(ctx context.Context, filter FieldFilter) ([]entity.Field, error)

	// Get возвращает месторождение или ErrNotFound
	Get(ctx context.Context, fieldID string) (*entity.Field, error)

	// Satellites возвращает месторождения, подключённые к хабу
	Satellites(ctx context.Context, hubID string) ([]entity.Field, error)

	// Save создаёт или полностью заменяет месторождение вместе с платформами
	Save(ctx context.Context, field *entity.Field) error

	// Statistics считает сводку по месторождениям
	Statistics(ctx context.Context) (*entity.FieldStatistics, error)
}
