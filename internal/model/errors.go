package model

import "errors"

// ErrNotFound is the normal negative result for any store lookup,
// including secret-code queries that match no user.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated is returned when an operation runs without an
// authenticated session in its context.
var ErrUnauthenticated = errors.New("not signed in")

// Identity errors.
var (
	ErrEmailTaken     = errors.New("email is already in use")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrWeakPassword   = errors.New("password must be at least 6 characters long")
	ErrWrongPassword  = errors.New("incorrect password")
	ErrReauthRequired = errors.New("current password is incorrect")
)

// Profile errors.
var (
	ErrNicknameTooShort = errors.New("nickname must be at least 2 characters long")
)

// Linking errors.
var (
	ErrEmptyCode    = errors.New("secret code must not be empty")
	ErrNoSecretCode = errors.New("secret code has not been created yet")
	ErrSelfLink     = errors.New("cannot link with your own secret code")
	ErrCodeNotFound = errors.New("no user found with that secret code")
	ErrAlreadyLinked = errors.New("this user is already linked with another partner")
	ErrNotLinked    = errors.New("no partner is linked")
)

// Calendar errors.
var ErrInvalidDay = errors.New("invalid calendar day")
