package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pairlog/pairlog/internal/model"
)

var _ model.UserStore = (*UserStore)(nil)

// UserStore is an in-memory model.UserStore for tests and local runs
// without a database.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.DeletedAt == nil && u.Email == user.Email {
			return model.User{}, model.ErrEmailTaken
		}
	}

	if user.FlowDates == nil {
		user.FlowDates = model.NewDateSet()
	}
	if user.IntimacyDates == nil {
		user.IntimacyDates = model.NewDateSet()
	}
	s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return model.User{}, model.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.DeletedAt == nil && user.Email == email {
			return cloneUser(user), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *UserStore) GetBySecretCode(ctx context.Context, code string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.DeletedAt == nil && user.SecretCode != nil && *user.SecretCode == code {
			return cloneUser(user), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *UserStore) GetByPartnerSecretCode(ctx context.Context, code string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.DeletedAt == nil && user.PartnerSecretCode != nil && *user.PartnerSecretCode == code {
			return cloneUser(user), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *UserStore) Update(ctx context.Context, id uuid.UUID, patch model.UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return model.User{}, model.ErrNotFound
	}

	if patch.Nickname.Valid {
		user.Nickname = patch.Nickname.Value
	}
	if patch.PasswordHash.Valid {
		user.PasswordHash = patch.PasswordHash.Value
	}
	if patch.SecretCode.Valid {
		user.SecretCode = clonePtr(patch.SecretCode.Value)
	}
	if patch.PartnerSecretCode.Valid {
		user.PartnerSecretCode = clonePtr(patch.PartnerSecretCode.Value)
	}
	if patch.FlowDates.Valid {
		user.FlowDates = patch.FlowDates.Value.Clone()
	}
	if patch.IntimacyDates.Valid {
		user.IntimacyDates = patch.IntimacyDates.Value.Clone()
	}
	user.UpdatedAt = time.Now()

	s.users[id] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *UserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return model.ErrNotFound
	}
	now := time.Now()
	user.DeletedAt = &now
	s.users[id] = user
	return nil
}

func cloneUser(u model.User) model.User {
	c := u
	c.SecretCode = clonePtr(u.SecretCode)
	c.PartnerSecretCode = clonePtr(u.PartnerSecretCode)
	if u.FlowDates != nil {
		c.FlowDates = u.FlowDates.Clone()
	}
	if u.IntimacyDates != nil {
		c.IntimacyDates = u.IntimacyDates.Clone()
	}
	return c
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
