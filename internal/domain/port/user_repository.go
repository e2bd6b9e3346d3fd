package port

import (
	"context"
	"time"

	"subsea-inspector/internal/domain/entity"
)

// UserRepository хранит диалоговые сессии Telegram-бота.
type UserRepository interface {
	// Get возвращает копию сессии; неизвестный пользователь получает новую в главном меню
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	Save(ctx context.Context, user *entity.User) error

	// Update атомарно применяет fn к сессии. Если fn вернула ошибку, сессия не меняется.
	Update(ctx context.Context, userID int64, fn func(*entity.User) error) error

	// Prune удаляет простаивающие в главном меню сессии и возвращает их число
	Prune(ctx context.Context, idleSince time.Time) (int, error)
}
