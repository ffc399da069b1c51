package cli

import (
	"context"
	"fmt"
)

// Code shows the user's secret code, generating one on first use.
func (a *App) Code(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	code, err := a.linking.CreateCode(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Your code:", code)
	fmt.Fprintln(a.out, "Share it with your partner so they can link to you.")
}

// Recode replaces the secret code. An existing link is dissolved first
// and any stale reference to the old code is cleared.
func (a *App) Recode(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	code, err := a.linking.RegenerateCode(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	a.dropSheet()
	fmt.Fprintln(a.out, "Your new code:", code)
}

// Link prompts for a partner's code and establishes the pair.
func (a *App) Link(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	code, err := getSimpleText(a.reader, "Enter your partner's code", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	partner, err := a.linking.Link(ctx, code)
	if err != nil {
		fmt.Fprintln(a.out, "Link failed:", err)
		return
	}
	a.dropSheet()
	fmt.Fprintln(a.out, "Linked with", partner.Nickname)
}

// Unlink dissolves the current pair.
func (a *App) Unlink(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	if err := a.linking.Unlink(ctx); err != nil {
		fmt.Fprintln(a.out, "Unlink failed:", err)
		return
	}
	a.dropSheet()
	fmt.Fprintln(a.out, "Unlinked.")
}

// Partner shows who the user is linked with.
func (a *App) Partner(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	partner, err := a.linking.Partner(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintf(a.out, "You are linked with %s (%s)\n", partner.Nickname, partner.Email)
}

func (a *App) dropSheet() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sheet = nil
}
