package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for user records. Lookups
// that match nothing return ErrNotFound; callers decide whether that is
// an error or a normal negative result.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetBySecretCode(ctx context.Context, code string) (User, error)
	GetByPartnerSecretCode(ctx context.Context, code string) (User, error)
	// Update applies a partial write with merge semantics: only fields
	// present in the patch change, everything else is left untouched.
	Update(ctx context.Context, id uuid.UUID, patch UserPatch) (User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// User represents a stored account with its tracked dates and linking
// state. A user is linked iff PartnerSecretCode is non-nil; the partner
// holds the mirror reference on their own record.
type User struct {
	ID                uuid.UUID
	Email             string
	Nickname          string
	PasswordHash      []byte
	SecretCode        *string
	PartnerSecretCode *string
	FlowDates         DateSet
	IntimacyDates     DateSet
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// Linked reports whether the record currently references a partner.
func (u User) Linked() bool {
	return u.PartnerSecretCode != nil
}

// Field is an optional cell in a patch. A zero Field is absent and the
// stored value keeps its current state; a valid Field writes its value,
// which for pointer types may be nil (an explicit NULL).
type Field[T any] struct {
	Valid bool
	Value T
}

// Set returns a present Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{Valid: true, Value: v}
}

// UserPatch is a merge-semantics partial update of a user record. It
// replaces the loose optional document keys of the source system with
// an explicit schema: absent means untouched, a nil pointer means NULL.
type UserPatch struct {
	Nickname          Field[string]
	PasswordHash      Field[[]byte]
	SecretCode        Field[*string]
	PartnerSecretCode Field[*string]
	FlowDates         Field[DateSet]
	IntimacyDates     Field[DateSet]
}

// Empty reports whether the patch carries no writes.
func (p UserPatch) Empty() bool {
	return !p.Nickname.Valid && !p.PasswordHash.Valid &&
		!p.SecretCode.Valid && !p.PartnerSecretCode.Valid &&
		!p.FlowDates.Valid && !p.IntimacyDates.Valid
}
