package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
)

// PairWrite is one half of a linking mutation: a partial update of a
// single user record.
type PairWrite struct {
	UserID uuid.UUID
	Patch  model.UserPatch
}

// PairWriter applies the two record writes that make up a link or
// unlink. Implementations decide how much atomicity the pair gets;
// callers of Linking never do.
type PairWriter interface {
	WritePair(ctx context.Context, first, second PairWrite) error
}

// SequentialPairWriter performs the two writes independently, in
// order. When the second write fails the first one stands: the
// relationship is left one-sided and the failure is logged. This
// mirrors the two-document update of the source system; an atomic
// implementation can replace it without touching callers.
type SequentialPairWriter struct {
	users  model.UserStore
	logger *logger.Logger
}

var _ PairWriter = (*SequentialPairWriter)(nil)

func NewSequentialPairWriter(users model.UserStore, logger *logger.Logger) *SequentialPairWriter {
	return &SequentialPairWriter{users: users, logger: logger}
}

func (w *SequentialPairWriter) WritePair(ctx context.Context, first, second PairWrite) error {
	if _, err := w.users.Update(ctx, first.UserID, first.Patch); err != nil {
		return fmt.Errorf("failed to write first record: %w", err)
	}

	if _, err := w.users.Update(ctx, second.UserID, second.Patch); err != nil {
		w.logger.Error("Linking: second pair write failed, first write stands",
			"first_user_id", first.UserID,
			"second_user_id", second.UserID,
			"error", err.Error())
		return fmt.Errorf("failed to write second record: %w", err)
	}

	return nil
}
