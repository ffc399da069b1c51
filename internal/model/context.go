package model

import "context"

// ContextManager moves the authenticated session in and out of a
// context. Core operations read the session from their context instead
// of any ambient current-user state.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, session Session) context.Context
	GetSessionFromContext(ctx context.Context) (Session, bool)
}

type sessionContextKey struct{}

// SessionContext is the default ContextManager.
type SessionContext struct{}

// NewSessionContext creates a SessionContext manager.
func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

func (m *SessionContext) SetSessionToContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func (m *SessionContext) GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}

// SessionFromContext extracts the authenticated session set by a
// ContextManager, failing with ErrUnauthenticated when absent.
func SessionFromContext(ctx context.Context) (Session, error) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	return session, nil
}
