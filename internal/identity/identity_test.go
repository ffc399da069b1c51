package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pairlog/pairlog/internal/mocks"
	"github.com/pairlog/pairlog/internal/model"
	"github.com/pairlog/pairlog/internal/repository/memory"
	"github.com/pairlog/pairlog/internal/testutil"
	"github.com/pairlog/pairlog/internal/token"
)

func newService(t *testing.T) (*Service, *memory.UserStore) {
	t.Helper()
	store := memory.NewUserStore()
	mgr := token.NewJWT("test-secret", time.Hour)
	return NewService(store, mgr, nil, testutil.MakeNoopLogger()), store
}

func TestService_SignUp(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	session, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", session.Email)
	assert.NotEmpty(t, session.Token)

	user, err := store.GetByID(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", user.Nickname)
	assert.Nil(t, user.SecretCode)
	assert.Nil(t, user.PartnerSecretCode)
	assert.Empty(t, user.FlowDates.Days())
	assert.Empty(t, user.IntimacyDates.Days())
}

func TestService_SignUp_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.SignUp(ctx, "not-an-email", "password1", "Alex")
	assert.ErrorIs(t, err, model.ErrInvalidEmail)

	_, err = svc.SignUp(ctx, "a@b.c", "short", "Alex")
	assert.ErrorIs(t, err, model.ErrWeakPassword)

	_, err = svc.SignUp(ctx, "a@b.c", "password1", " x ")
	assert.ErrorIs(t, err, model.ErrNicknameTooShort)
}

func TestService_SignUp_EmailTaken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "a@b.c", "password2", "Sam")
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)

	session, err := svc.SignIn(ctx, "a@b.c", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, session.UserID)

	_, err = svc.SignIn(ctx, "a@b.c", "wrongpass")
	assert.ErrorIs(t, err, model.ErrWrongPassword)

	_, err = svc.SignIn(ctx, "missing@b.c", "password1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	session, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)

	// Reauthentication with the wrong current password fails.
	err = svc.ChangePassword(ctx, session, "wrongpass", "password2")
	assert.ErrorIs(t, err, model.ErrReauthRequired)

	err = svc.ChangePassword(ctx, session, "password1", "short")
	assert.ErrorIs(t, err, model.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, session, "password1", "password2"))

	_, err = svc.SignIn(ctx, "a@b.c", "password1")
	assert.ErrorIs(t, err, model.ErrWrongPassword)
	_, err = svc.SignIn(ctx, "a@b.c", "password2")
	assert.NoError(t, err)
}

func TestService_SignUp_TokenFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	tokens := &mocks.TokenManager{}
	tokens.On("GenerateSessionToken", mock.Anything).Return("", errors.New("signing key unavailable"))
	svc := NewService(store, tokens, nil, testutil.MakeNoopLogger())

	_, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.Error(t, err)
	tokens.AssertExpectations(t)
}

func TestService_SendPasswordReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)

	assert.NoError(t, svc.SendPasswordReset(ctx, "a@b.c"))
	assert.ErrorIs(t, svc.SendPasswordReset(ctx, "missing@b.c"), model.ErrNotFound)
	assert.ErrorIs(t, svc.SendPasswordReset(ctx, "garbage"), model.ErrInvalidEmail)
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	session, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, session))

	_, err = store.GetByID(ctx, session.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.SignIn(ctx, "a@b.c", "password1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_EventStream(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	events, cancel := svc.Subscribe()
	defer cancel()

	session, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, session))

	first := <-events
	assert.Equal(t, model.SessionSignedIn, first.Kind)
	assert.Equal(t, session.UserID, first.Session.UserID)

	second := <-events
	assert.Equal(t, model.SessionSignedOut, second.Kind)
}

func TestService_EventStream_Teardown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	events, cancel := svc.Subscribe()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	// Publishing with no subscriber must not block.
	_, err := svc.SignUp(ctx, "a@b.c", "password1", "Alex")
	require.NoError(t, err)
}
