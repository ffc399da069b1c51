package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
	"github.com/pairlog/pairlog/internal/service"
)

// App is the interactive terminal client. It owns the current session,
// a working calendar sheet, and the input/output streams of the REPL.
type App struct {
	identity model.Identity
	profile  *service.Profile
	linking  *service.Linking
	calendar *service.Calendar
	ctxMgr   model.ContextManager
	logger   *logger.Logger

	mu      sync.Mutex
	session model.Session
	sheet   *service.Sheet

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(
	identity model.Identity,
	profile *service.Profile,
	linking *service.Linking,
	calendar *service.Calendar,
	ctxMgr model.ContextManager,
	logger *logger.Logger,
) *App {
	return &App{
		identity: identity,
		profile:  profile,
		linking:  linking,
		calendar: calendar,
		ctxMgr:   ctxMgr,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Run subscribes to the session event stream and starts the REPL.
// It blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	events, cancel := a.identity.Subscribe()
	defer cancel()

	go func() {
		for ev := range events {
			if ev.Kind == model.SessionSignedOut {
				a.clearSession()
			}
		}
	}()

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Token != ""
}

func (a *App) setSession(session model.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = session
	a.sheet = nil
}

func (a *App) clearSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = model.Session{}
	a.sheet = nil
}

func (a *App) currentSession() model.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// sessionCtx attaches the current session to ctx. Commands that need an
// authenticated user call this and bail out when nobody is signed in.
func (a *App) sessionCtx(ctx context.Context) (context.Context, bool) {
	session := a.currentSession()
	if session.Token == "" {
		fmt.Fprintln(a.out, "You are not signed in. Use 'login' or 'signup' first.")
		return ctx, false
	}
	return a.ctxMgr.SetSessionToContext(ctx, session), true
}
