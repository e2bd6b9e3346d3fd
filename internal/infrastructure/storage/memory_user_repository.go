package storage

import (
	"context"
	"sync"
	"time"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// MemoryUserRepository держит сессии бота в памяти процесса.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]*entity.User
	now   func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
		now:   time.Now,
	}
}

func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.lookup(userID, chatID)
	if chatID != 0 && user.ChatID != chatID {
		// инспектор написал из другого чата
		user.ChatID = chatID
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	if !user.State.Valid() {
		return entity.NewValidationError("state", "unknown dialogue state "+string(user.State))
	}
	clone := *user

	r.mu.Lock()
	r.users[user.ID] = &clone
	r.mu.Unlock()
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, userID int64, fn func(*entity.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.lookup(userID, 0)
	draft := *current
	if err := fn(&draft); err != nil {
		return err
	}
	*current = draft
	return nil
}

// Prune удаляет сессии в главном меню, не менявшиеся с idleSince.
func (r *MemoryUserRepository) Prune(ctx context.Context, idleSince time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, u := range r.users {
		if u.State == entity.StateMainMenu && u.UpdatedAt.Before(idleSince) {
			delete(r.users, id)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// lookup вызывается под мьютексом.
func (r *MemoryUserRepository) lookup(userID, chatID int64) *entity.User {
	user, ok := r.users[userID]
	if !ok {
		user = entity.NewUser(userID, chatID, r.now())
		r.users[userID] = user
	}
	return user
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
