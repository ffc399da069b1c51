package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
)

// Linking establishes and tears down the symmetric partner reference
// between two user records using shared secret codes. All operations
// read the authenticated session from their context.
type Linking struct {
	users  model.UserStore
	pair   PairWriter
	logger *logger.Logger
}

func NewLinking(users model.UserStore, pair PairWriter, logger *logger.Logger) *Linking {
	return &Linking{users: users, pair: pair, logger: logger}
}

// CreateCode generates and persists the user's secret code. When a
// code already exists it is returned unchanged.
func (s *Linking) CreateCode(ctx context.Context) (string, error) {
	user, err := s.self(ctx)
	if err != nil {
		return "", err
	}

	if user.SecretCode != nil {
		return *user.SecretCode, nil
	}

	code, err := GenerateSecretCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate secret code: %w", err)
	}

	if _, err := s.users.Update(ctx, user.ID, model.UserPatch{SecretCode: model.Set(&code)}); err != nil {
		return "", fmt.Errorf("failed to store secret code: %w", err)
	}

	s.logger.Info("Linking: secret code created", "user_id", user.ID)
	return code, nil
}

// RegenerateCode replaces the user's secret code. A linked partner is
// unlinked first; afterwards any record still pointing at the old code
// is cleaned up best-effort. Both side steps may fail without stopping
// the rotation; the failures are logged, not surfaced.
func (s *Linking) RegenerateCode(ctx context.Context) (string, error) {
	user, err := s.self(ctx)
	if err != nil {
		return "", err
	}

	if user.Linked() {
		if err := s.Unlink(ctx); err != nil {
			s.logger.Error("Linking: failed to unlink partner during code rotation",
				"user_id", user.ID,
				"error", err.Error())
		}
	}

	code, err := GenerateSecretCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate secret code: %w", err)
	}

	if _, err := s.users.Update(ctx, user.ID, model.UserPatch{SecretCode: model.Set(&code)}); err != nil {
		return "", fmt.Errorf("failed to store secret code: %w", err)
	}

	if user.SecretCode != nil {
		s.clearStaleReference(ctx, *user.SecretCode)
	}

	s.logger.Info("Linking: secret code regenerated", "user_id", user.ID)
	return code, nil
}

// clearStaleReference clears PartnerSecretCode on whichever record
// still points at a rotated-away code. Permission boundaries may make
// this write impossible; that failure is swallowed.
func (s *Linking) clearStaleReference(ctx context.Context, oldCode string) {
	stale, err := s.users.GetByPartnerSecretCode(ctx, oldCode)
	if errors.Is(err, model.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("Linking: stale reference lookup failed",
			"error", err.Error())
		return
	}

	if _, err := s.users.Update(ctx, stale.ID, model.UserPatch{PartnerSecretCode: model.Set[*string](nil)}); err != nil {
		s.logger.Error("Linking: failed to clear stale partner reference",
			"stale_user_id", stale.ID,
			"error", err.Error())
	}
}

// Link pairs the authenticated user with whoever owns partnerCode. The
// two back-references are written independently; see PairWriter for
// the consistency contract.
func (s *Linking) Link(ctx context.Context, partnerCode string) (model.User, error) {
	partnerCode = strings.TrimSpace(partnerCode)
	if partnerCode == "" {
		return model.User{}, model.ErrEmptyCode
	}

	user, err := s.self(ctx)
	if err != nil {
		return model.User{}, err
	}

	if user.SecretCode == nil {
		return model.User{}, model.ErrNoSecretCode
	}
	if partnerCode == *user.SecretCode {
		return model.User{}, model.ErrSelfLink
	}

	partner, err := s.users.GetBySecretCode(ctx, partnerCode)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrCodeNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to look up partner code: %w", err)
	}

	// First-writer-wins: an already-linked target rejects the link.
	if partner.Linked() {
		return model.User{}, model.ErrAlreadyLinked
	}

	err = s.pair.WritePair(ctx,
		PairWrite{UserID: user.ID, Patch: model.UserPatch{PartnerSecretCode: model.Set(&partnerCode)}},
		PairWrite{UserID: partner.ID, Patch: model.UserPatch{PartnerSecretCode: model.Set(user.SecretCode)}},
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to link partner: %w", err)
	}

	s.logger.Info("Linking: partners linked",
		"user_id", user.ID,
		"partner_id", partner.ID)
	return partner, nil
}

// Unlink clears the caller's back-reference first, then clears the
// counterpart's. A missing counterpart (already unlinked, or dangling
// after a rotation) is a normal negative result.
func (s *Linking) Unlink(ctx context.Context) error {
	user, err := s.self(ctx)
	if err != nil {
		return err
	}

	if !user.Linked() {
		return model.ErrNotLinked
	}
	formerCode := *user.PartnerSecretCode

	clear := model.UserPatch{PartnerSecretCode: model.Set[*string](nil)}

	if _, err := s.users.Update(ctx, user.ID, clear); err != nil {
		return fmt.Errorf("failed to clear partner reference: %w", err)
	}

	partner, err := s.users.GetBySecretCode(ctx, formerCode)
	if errors.Is(err, model.ErrNotFound) {
		// Nobody holds the code anymore; only our side needed clearing.
		s.logger.Info("Linking: partners unlinked", "user_id", user.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up partner code: %w", err)
	}

	if _, err := s.users.Update(ctx, partner.ID, clear); err != nil {
		s.logger.Error("Linking: partner-side clear failed, own side stands",
			"user_id", user.ID,
			"partner_id", partner.ID,
			"error", err)
		return fmt.Errorf("failed to unlink partner: %w", err)
	}

	s.logger.Info("Linking: partners unlinked", "user_id", user.ID)
	return nil
}

// Partner resolves the linked partner's record, the read-only mirror
// the calendar merges in.
func (s *Linking) Partner(ctx context.Context) (model.User, error) {
	user, err := s.self(ctx)
	if err != nil {
		return model.User{}, err
	}

	if !user.Linked() {
		return model.User{}, model.ErrNotLinked
	}

	partner, err := s.users.GetBySecretCode(ctx, *user.PartnerSecretCode)
	if errors.Is(err, model.ErrNotFound) {
		// Dangling reference after the partner rotated their code.
		return model.User{}, model.ErrCodeNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to look up partner code: %w", err)
	}

	return partner, nil
}

func (s *Linking) self(ctx context.Context) (model.User, error) {
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
