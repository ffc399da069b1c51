package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/pairlog/pairlog/internal/model"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, nickname, and password and creates an account.
// On success the new session becomes the current one.
func (a *App) Signup(ctx context.Context) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	nickname, err := getSimpleText(a.reader, "Enter nickname", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	session, err := a.identity.SignUp(ctx, email, password, nickname)
	if err != nil {
		fmt.Fprintln(a.out, "Signup failed:", err)
		return
	}

	a.setSession(session)
	fmt.Fprintf(a.out, "Welcome, %s!\n", nickname)
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	session, err := a.identity.SignIn(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return
	}

	a.setSession(session)
	fmt.Fprintln(a.out, "Signed in as", session.Email)
}

// Logout signs the current session out; the session event stream drops
// the app back to the login state.
func (a *App) Logout(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not signed in.")
		return
	}
	if err := a.identity.SignOut(ctx, a.currentSession()); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return
	}
	a.clearSession()
	fmt.Fprintln(a.out, "Signed out.")
}

// Passwd re-authenticates with the current password and replaces it.
func (a *App) Passwd(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not signed in.")
		return
	}
	current, err := getPassword("Current password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	next, err := getPassword("New password", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if err := a.identity.ChangePassword(ctx, a.currentSession(), current, next); err != nil {
		fmt.Fprintln(a.out, "Password change failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Password updated.")
}

// Reset requests a password-reset message for an email address. It works
// without a session so a locked-out user can reach it.
func (a *App) Reset(ctx context.Context) {
	email := a.currentSession().Email
	if email == "" {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			fmt.Fprintln(a.out, "Error:", err)
			return
		}
	}

	// An unknown address gets the same answer as a known one, so the
	// prompt cannot be used to test whether an account exists.
	err := a.identity.SendPasswordReset(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		fmt.Fprintln(a.out, "Reset failed:", err)
		return
	}
	fmt.Fprintln(a.out, "If the address exists, a reset message has been sent.")
}

// Delete removes the account after an explicit confirmation.
func (a *App) Delete(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not signed in.")
		return
	}
	answer, err := getSimpleText(a.reader, "This permanently deletes your account. Type 'yes' to confirm", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Aborted.")
		return
	}

	if err := a.identity.DeleteAccount(ctx, a.currentSession()); err != nil {
		fmt.Fprintln(a.out, "Delete failed:", err)
		return
	}
	a.clearSession()
	fmt.Fprintln(a.out, "Account deleted.")
}
