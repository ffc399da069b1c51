package cli

import (
	"context"
	"fmt"
)

// Whoami shows the signed-in user's profile.
func (a *App) Whoami(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	user, err := a.profile.Get(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	fmt.Fprintln(a.out, "Email:   ", user.Email)
	fmt.Fprintln(a.out, "Nickname:", user.Nickname)
	if user.SecretCode != nil {
		fmt.Fprintln(a.out, "Code:    ", *user.SecretCode)
	}
	if user.Linked() {
		fmt.Fprintln(a.out, "Linked:   yes")
	} else {
		fmt.Fprintln(a.out, "Linked:   no")
	}
}

// Nickname prompts for and stores a new display name.
func (a *App) Nickname(ctx context.Context) {
	ctx, ok := a.sessionCtx(ctx)
	if !ok {
		return
	}

	nickname, err := getSimpleText(a.reader, "Enter new nickname", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	user, err := a.profile.UpdateNickname(ctx, nickname)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}
	fmt.Fprintln(a.out, "Nickname updated to", user.Nickname)
}
