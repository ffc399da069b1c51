package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ResetNotifier delivers a password-reset token to the account owner.
type ResetNotifier interface {
	SendReset(ctx context.Context, email, resetToken string) error
}

// LogResetNotifier writes reset tokens to the application log instead
// of sending mail. Stands in until a real mailer exists.
type LogResetNotifier struct {
	Logger *logger.Logger
}

func (n *LogResetNotifier) SendReset(ctx context.Context, email, resetToken string) error {
	n.Logger.Info("Identity: password reset issued",
		"email", email,
		"reset_token", resetToken)
	return nil
}

// Service implements model.Identity with password credentials stored
// alongside the user record.
type Service struct {
	users    model.UserStore
	tokens   model.TokenManager
	notifier ResetNotifier
	logger   *logger.Logger
	events   *eventStream
}

var _ model.Identity = (*Service)(nil)

// NewService creates the identity service. A nil notifier falls back
// to logging reset tokens.
func NewService(users model.UserStore, tokens model.TokenManager, notifier ResetNotifier, logger *logger.Logger) *Service {
	if notifier == nil {
		notifier = &LogResetNotifier{Logger: logger}
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		events:   newEventStream(),
	}
}

// SignUp validates the registration input, creates the user record
// with empty date sets, and opens a session.
func (s *Service) SignUp(ctx context.Context, email, password, nickname string) (model.Session, error) {
	email = strings.TrimSpace(email)
	nickname = strings.TrimSpace(nickname)

	if !emailPattern.MatchString(email) {
		return model.Session{}, model.ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return model.Session{}, model.ErrWeakPassword
	}
	if len([]rune(nickname)) < 2 {
		return model.Session{}, model.ErrNicknameTooShort
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("Identity: signup rejected, email taken", "email", email)
		return model.Session{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:            uuid.New(),
		Email:         email,
		Nickname:      nickname,
		PasswordHash:  hash,
		FlowDates:     model.NewDateSet(),
		IntimacyDates: model.NewDateSet(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	user, err = s.users.Create(ctx, user)
	if err != nil {
		s.logger.Error("Identity: failed to create user",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.openSession(user)
	if err != nil {
		return model.Session{}, err
	}

	s.logger.Info("Identity: user signed up", "email", email, "user_id", user.ID)
	return session, nil
}

// SignIn verifies credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return model.Session{}, model.ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return model.Session{}, model.ErrWrongPassword
	}

	session, err := s.openSession(user)
	if err != nil {
		return model.Session{}, err
	}

	s.logger.Info("Identity: user signed in", "email", email, "user_id", user.ID)
	return session, nil
}

// SignOut closes the session and publishes a signed-out event. Session
// tokens are stateless, so there is nothing to revoke server-side.
func (s *Service) SignOut(ctx context.Context, session model.Session) error {
	s.events.publish(model.SessionEvent{Kind: model.SessionSignedOut})
	s.logger.Info("Identity: user signed out", "user_id", session.UserID)
	return nil
}

// ChangePassword reauthenticates with the current password before
// storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, session model.Session, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(currentPassword)) != nil {
		return model.ErrReauthRequired
	}
	if len(newPassword) < minPasswordLength {
		return model.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.Update(ctx, user.ID, model.UserPatch{PasswordHash: model.Set(hash)}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Identity: password changed", "user_id", user.ID)
	return nil
}

// SendPasswordReset mints a one-time reset token for an existing
// account and hands it to the notifier.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return model.ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	resetToken, err := s.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.notifier.SendReset(ctx, email, resetToken); err != nil {
		return fmt.Errorf("failed to send password reset: %w", err)
	}
	return nil
}

// DeleteAccount soft-deletes the user record, then tears down the
// session. The record is marked deleted first, matching the order the
// account screen uses.
func (s *Service) DeleteAccount(ctx context.Context, session model.Session) error {
	if err := s.users.SoftDelete(ctx, session.UserID); err != nil {
		return fmt.Errorf("failed to delete user record: %w", err)
	}

	s.events.publish(model.SessionEvent{Kind: model.SessionSignedOut})
	s.logger.Info("Identity: account deleted", "user_id", session.UserID)
	return nil
}

// Subscribe returns the ordered session-state stream and its teardown.
func (s *Service) Subscribe() (<-chan model.SessionEvent, func()) {
	return s.events.subscribe()
}

func (s *Service) openSession(user model.User) (model.Session, error) {
	tokenString, err := s.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := model.Session{UserID: user.ID, Email: user.Email, Token: tokenString}
	s.events.publish(model.SessionEvent{Kind: model.SessionSignedIn, Session: session})
	return session, nil
}
