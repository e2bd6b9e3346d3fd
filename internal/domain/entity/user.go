package entity

import "time"

// UserState шаг диалога с инспектором в Telegram
type UserState string

const (
	StateMainMenu         UserState = "main_menu"
	StateAwaitingPhoto    UserState = "awaiting_photo"
	StateAwaitingLocation UserState = "awaiting_location"
	StateProcessing       UserState = "processing"
)

// Valid сообщает, известно ли состояние.
func (s UserState) Valid() bool {
	switch s {
	case StateMainMenu, StateAwaitingPhoto, StateAwaitingLocation, StateProcessing:
		return true
	}
	return false
}

// User диалоговая сессия инспектора. ChatID нужен для ответов вне цикла обновлений.
type User struct {
	ID        int64
	ChatID    int64
	State     UserState
	UpdatedAt time.Time
}

// NewUser создаёт сессию в главном меню.
func NewUser(userID, chatID int64, now time.Time) *User {
	return &User{
		ID:        userID,
		ChatID:    chatID,
		State:     StateMainMenu,
		UpdatedAt: now,
	}
}

// SetState переводит сессию в новое состояние.
func (u *User) SetState(state UserState, now time.Time) error {
	if !state.Valid() {
		return NewValidationError("state", "unknown dialogue state "+string(state))
	}
	u.State = state
	u.UpdatedAt = now
	return nil
}

// Busy истинно, пока по сессии идёт анализ, начатый не раньше чем staleAfter назад.
// Зависшая обработка (например, после паники) перестаёт блокировать инспектора.
func (u *User) Busy(now time.Time, staleAfter time.Duration) bool {
	return u.State == StateProcessing && now.Sub(u.UpdatedAt) < staleAfter
}
