package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
)

// Profile covers the account-screen operations that are not linking:
// viewing the record and editing the nickname.
type Profile struct {
	users  model.UserStore
	logger *logger.Logger
}

func NewProfile(users model.UserStore, logger *logger.Logger) *Profile {
	return &Profile{users: users, logger: logger}
}

// Get returns the authenticated user's record.
func (s *Profile) Get(ctx context.Context) (model.User, error) {
	session, err := model.SessionFromContext(ctx)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// UpdateNickname stores a new display name. Validation happens before
// any store call.
func (s *Profile) UpdateNickname(ctx context.Context, nickname string) (model.User, error) {
	session, err := model.SessionFromContext(ctx)
	if err != nil {
		return model.User{}, err
	}

	nickname = strings.TrimSpace(nickname)
	if len([]rune(nickname)) < 2 {
		return model.User{}, model.ErrNicknameTooShort
	}

	user, err := s.users.Update(ctx, session.UserID, model.UserPatch{Nickname: model.Set(nickname)})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update nickname: %w", err)
	}

	s.logger.Info("Profile: nickname updated", "user_id", user.ID)
	return user, nil
}
