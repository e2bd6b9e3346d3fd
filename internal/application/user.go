package app

import (
	"context"
	"errors"
	"time"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// ErrBusy возвращается, если у инспектора уже идёт анализ снимка.
var ErrBusy = errors.New("analysis already in progress")

// processingTimeout после него зависшая обработка перестаёт блокировать сессию
const processingTimeout = 5 * time.Minute

// UserService ведёт диалог инспектора с ботом.
type UserService struct {
	repo port.UserRepository
	now  func() time.Time
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState сохраняет новое состояние; неизвестное состояние даёт ValidationError.
func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if err := user.SetState(state, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) BeginNearby(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingLocation)
}

// BeginProcessing занимает сессию под анализ снимка. Пока анализ не завершён
// через Release, повторный вызов возвращает ErrBusy.
func (s *UserService) BeginProcessing(ctx context.Context, userID, chatID int64) error {
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return err
	}
	now := s.now()
	return s.repo.Update(ctx, userID, func(u *entity.User) error {
		if u.Busy(now, processingTimeout) {
			return ErrBusy
		}
		return u.SetState(entity.StateProcessing, now)
	})
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// Release возвращает сессию в главное меню после завершения операции.
func (s *UserService) Release(ctx context.Context, userID int64) error {
	now := s.now()
	return s.repo.Update(ctx, userID, func(u *entity.User) error {
		return u.SetState(entity.StateMainMenu, now)
	})
}

// PruneIdle забывает сессии, простаивающие в главном меню дольше maxIdle.
func (s *UserService) PruneIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	return s.repo.Prune(ctx, s.now().Add(-maxIdle))
}
