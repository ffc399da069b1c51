package model

import (
	"context"

	"github.com/google/uuid"
)

// Session identifies an authenticated user for the lifetime of a
// sign-in. The token is opaque to everything except the token manager.
type Session struct {
	UserID uuid.UUID
	Email  string
	Token  string
}

// SessionEventKind enumerates session-state transitions.
type SessionEventKind string

const (
	// SessionSignedIn is published after a successful signup or sign-in.
	SessionSignedIn SessionEventKind = "signed-in"
	// SessionSignedOut is published on sign-out and account deletion.
	SessionSignedOut SessionEventKind = "signed-out"
)

// SessionEvent is one entry in the ordered session-state stream.
// Session is populated for signed-in events only.
type SessionEvent struct {
	Kind    SessionEventKind
	Session Session
}

// Identity is the authentication collaborator. All failures map onto
// the sentinel errors in this package; none of them are fatal.
type Identity interface {
	SignUp(ctx context.Context, email, password, nickname string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, session Session) error
	ChangePassword(ctx context.Context, session Session, currentPassword, newPassword string) error
	SendPasswordReset(ctx context.Context, email string) error
	DeleteAccount(ctx context.Context, session Session) error
	// Subscribe returns the ordered session-state stream. The stream is
	// intended for a single consumer; the cancel function tears it down.
	Subscribe() (<-chan SessionEvent, func())
}

// TokenManager issues and validates session tokens.
type TokenManager interface {
	GenerateSessionToken(userID uuid.UUID) (string, error)
	ParseSessionToken(token string) (uuid.UUID, error)
}
