package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pairlog/pairlog/internal/mocks"
	"github.com/pairlog/pairlog/internal/model"
	"github.com/pairlog/pairlog/internal/repository/memory"
	"github.com/pairlog/pairlog/internal/testutil"
)

func newLinking(store model.UserStore) *Linking {
	log := testutil.MakeNoopLogger()
	return NewLinking(store, NewSequentialPairWriter(store, log), log)
}

func seedUser(t *testing.T, store *memory.UserStore, email string) model.User {
	t.Helper()
	user, err := store.Create(context.Background(), model.User{
		ID:            uuid.New(),
		Email:         email,
		Nickname:      "someone",
		FlowDates:     model.NewDateSet(),
		IntimacyDates: model.NewDateSet(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	require.NoError(t, err)
	return user
}

func sessionCtx(user model.User) context.Context {
	mgr := model.NewSessionContext()
	return mgr.SetSessionToContext(context.Background(), model.Session{UserID: user.ID, Email: user.Email})
}

func TestLinking_CreateCode(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)
	user := seedUser(t, store, "a@b.c")
	ctx := sessionCtx(user)

	code, err := svc.CreateCode(ctx)
	require.NoError(t, err)
	require.Len(t, code, 8)
	for _, r := range code {
		assert.Contains(t, secretCodeAlphabet, string(r))
	}

	// Creating again returns the stored code untouched.
	again, err := svc.CreateCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}

func TestLinking_CreateCode_Unauthenticated(t *testing.T) {
	svc := newLinking(memory.NewUserStore())

	_, err := svc.CreateCode(context.Background())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestLinking_Link(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	ctxA := sessionCtx(userA)
	ctxB := sessionCtx(userB)

	codeA, err := svc.CreateCode(ctxA)
	require.NoError(t, err)
	codeB, err := svc.CreateCode(ctxB)
	require.NoError(t, err)

	partner, err := svc.Link(ctxA, codeB)
	require.NoError(t, err)
	assert.Equal(t, userB.ID, partner.ID)

	// Both back-references are in place.
	storedA, err := store.GetByID(ctxA, userA.ID)
	require.NoError(t, err)
	require.NotNil(t, storedA.PartnerSecretCode)
	assert.Equal(t, codeB, *storedA.PartnerSecretCode)

	storedB, err := store.GetByID(ctxB, userB.ID)
	require.NoError(t, err)
	require.NotNil(t, storedB.PartnerSecretCode)
	assert.Equal(t, codeA, *storedB.PartnerSecretCode)
}

func TestLinking_Link_Preconditions(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	user := seedUser(t, store, "a@b.c")
	ctx := sessionCtx(user)

	// Without an own code nothing can be linked.
	_, err := svc.Link(ctx, "WHATEVER")
	assert.ErrorIs(t, err, model.ErrNoSecretCode)

	code, err := svc.CreateCode(ctx)
	require.NoError(t, err)

	_, err = svc.Link(ctx, "")
	assert.ErrorIs(t, err, model.ErrEmptyCode)

	// Self-linking is always rejected.
	_, err = svc.Link(ctx, code)
	assert.ErrorIs(t, err, model.ErrSelfLink)

	// Unknown code is a recoverable negative result.
	_, err = svc.Link(ctx, "NOSUCH00")
	assert.ErrorIs(t, err, model.ErrCodeNotFound)
}

func TestLinking_Link_AlreadyLinked(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	userC := seedUser(t, store, "c@b.c")
	ctxA := sessionCtx(userA)
	ctxB := sessionCtx(userB)
	ctxC := sessionCtx(userC)

	_, err := svc.CreateCode(ctxA)
	require.NoError(t, err)
	codeB, err := svc.CreateCode(ctxB)
	require.NoError(t, err)
	_, err = svc.CreateCode(ctxC)
	require.NoError(t, err)

	_, err = svc.Link(ctxA, codeB)
	require.NoError(t, err)

	// B already carries a partner reference; first writer won.
	_, err = svc.Link(ctxC, codeB)
	assert.ErrorIs(t, err, model.ErrAlreadyLinked)
}

func TestLinking_Link_SecondWriteFailureLeavesFirst(t *testing.T) {
	store := &mocks.UserStore{}
	log := testutil.MakeNoopLogger()
	svc := NewLinking(store, NewSequentialPairWriter(store, log), log)

	selfCode := "AAAA1111"
	partnerCode := "BBBB2222"
	self := model.User{ID: uuid.New(), SecretCode: &selfCode}
	partner := model.User{ID: uuid.New(), SecretCode: &partnerCode}

	store.On("GetByID", mock.Anything, self.ID).Return(self, nil)
	store.On("GetBySecretCode", mock.Anything, partnerCode).Return(partner, nil)
	store.On("Update", mock.Anything, self.ID, mock.Anything).Return(self, nil)
	store.On("Update", mock.Anything, partner.ID, mock.Anything).Return(model.User{}, errors.New("permission denied"))

	_, err := svc.Link(sessionCtx(self), partnerCode)
	require.Error(t, err)

	// The first write happened and is not rolled back.
	store.AssertCalled(t, "Update", mock.Anything, self.ID, mock.Anything)
	store.AssertNumberOfCalls(t, "Update", 2)
}

func TestLinking_Unlink(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	ctxA := sessionCtx(userA)
	ctxB := sessionCtx(userB)

	_, err := svc.CreateCode(ctxA)
	require.NoError(t, err)
	codeB, err := svc.CreateCode(ctxB)
	require.NoError(t, err)
	_, err = svc.Link(ctxA, codeB)
	require.NoError(t, err)

	require.NoError(t, svc.Unlink(ctxA))

	storedA, err := store.GetByID(ctxA, userA.ID)
	require.NoError(t, err)
	assert.Nil(t, storedA.PartnerSecretCode)

	storedB, err := store.GetByID(ctxB, userB.ID)
	require.NoError(t, err)
	assert.Nil(t, storedB.PartnerSecretCode)

	// Codes survive an unlink; relinking stays possible.
	assert.NotNil(t, storedA.SecretCode)
	assert.NotNil(t, storedB.SecretCode)

	assert.ErrorIs(t, svc.Unlink(ctxA), model.ErrNotLinked)
}

func TestLinking_Unlink_ClearsOwnSideBeforePartnerLookup(t *testing.T) {
	store := &mocks.UserStore{}
	log := testutil.MakeNoopLogger()
	svc := NewLinking(store, NewSequentialPairWriter(store, log), log)

	partnerCode := "BBBB2222"
	self := model.User{ID: uuid.New(), PartnerSecretCode: &partnerCode}

	store.On("GetByID", mock.Anything, self.ID).Return(self, nil)
	store.On("Update", mock.Anything, self.ID, mock.Anything).Return(self, nil)
	store.On("GetBySecretCode", mock.Anything, partnerCode).Return(model.User{}, errors.New("connection reset"))

	err := svc.Unlink(sessionCtx(self))
	require.Error(t, err)

	// Even when the partner lookup fails hard, our back-reference is
	// already gone and the pair does not stay fully linked.
	store.AssertCalled(t, "Update", mock.Anything, self.ID, mock.Anything)
	store.AssertNumberOfCalls(t, "Update", 1)
}

func TestLinking_RegenerateCode_UnlinksSelf(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	ctxA := sessionCtx(userA)
	ctxB := sessionCtx(userB)

	oldCode, err := svc.CreateCode(ctxA)
	require.NoError(t, err)
	codeB, err := svc.CreateCode(ctxB)
	require.NoError(t, err)
	_, err = svc.Link(ctxA, codeB)
	require.NoError(t, err)

	newCode, err := svc.RegenerateCode(ctxA)
	require.NoError(t, err)
	assert.NotEqual(t, oldCode, newCode)

	// Rotation implies self-unlink.
	storedA, err := store.GetByID(ctxA, userA.ID)
	require.NoError(t, err)
	assert.Nil(t, storedA.PartnerSecretCode)
	require.NotNil(t, storedA.SecretCode)
	assert.Equal(t, newCode, *storedA.SecretCode)

	// The ex-partner no longer references either code.
	storedB, err := store.GetByID(ctxB, userB.ID)
	require.NoError(t, err)
	assert.Nil(t, storedB.PartnerSecretCode)
}

func TestLinking_RegenerateCode_SweepsStaleReference(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	ctxA := sessionCtx(userA)

	oldCode, err := svc.CreateCode(ctxA)
	require.NoError(t, err)

	// B points at A's code without A knowing: a one-sided link left
	// behind by a partial failure.
	_, err = store.Update(ctxA, userB.ID, model.UserPatch{PartnerSecretCode: model.Set(&oldCode)})
	require.NoError(t, err)

	_, err = svc.RegenerateCode(ctxA)
	require.NoError(t, err)

	storedB, err := store.GetByID(ctxA, userB.ID)
	require.NoError(t, err)
	assert.Nil(t, storedB.PartnerSecretCode)
}

func TestLinking_RegenerateCode_SweepFailureSwallowed(t *testing.T) {
	store := &mocks.UserStore{}
	log := testutil.MakeNoopLogger()
	svc := NewLinking(store, NewSequentialPairWriter(store, log), log)

	oldCode := "AAAA1111"
	self := model.User{ID: uuid.New(), SecretCode: &oldCode}
	stale := model.User{ID: uuid.New(), PartnerSecretCode: &oldCode}

	store.On("GetByID", mock.Anything, self.ID).Return(self, nil)
	store.On("Update", mock.Anything, self.ID, mock.Anything).Return(self, nil)
	store.On("GetByPartnerSecretCode", mock.Anything, oldCode).Return(stale, nil)
	store.On("Update", mock.Anything, stale.ID, mock.Anything).Return(model.User{}, errors.New("permission denied"))

	// The cleanup write fails; rotation still succeeds.
	code, err := svc.RegenerateCode(sessionCtx(self))
	require.NoError(t, err)
	assert.Len(t, code, 8)
}

func TestLinking_Partner(t *testing.T) {
	store := memory.NewUserStore()
	svc := newLinking(store)

	userA := seedUser(t, store, "a@b.c")
	userB := seedUser(t, store, "b@b.c")
	ctxA := sessionCtx(userA)
	ctxB := sessionCtx(userB)

	_, err := svc.Partner(ctxA)
	assert.ErrorIs(t, err, model.ErrNotLinked)

	_, err = svc.CreateCode(ctxA)
	require.NoError(t, err)
	codeB, err := svc.CreateCode(ctxB)
	require.NoError(t, err)
	_, err = svc.Link(ctxA, codeB)
	require.NoError(t, err)

	partner, err := svc.Partner(ctxA)
	require.NoError(t, err)
	assert.Equal(t, userB.ID, partner.ID)

	// After the partner rotates, A's reference dangles.
	_, err = svc.RegenerateCode(ctxB)
	require.NoError(t, err)
	_, err = svc.Partner(ctxA)
	assert.Error(t, err)
}

func TestGenerateSecretCode(t *testing.T) {
	seen := map[string]bool{}
	for range 32 {
		code, err := GenerateSecretCode()
		require.NoError(t, err)
		require.Len(t, code, 8)
		for _, r := range code {
			assert.Contains(t, secretCodeAlphabet, string(r))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
