package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) status() string {
	session := a.currentSession()
	if session.Email == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", session.Email)
}

// Root runs the command loop until EOF, "exit", or ctx cancellation.
// Lines are read from the app's shared reader so interactive prompts
// inside commands see the input that follows theirs.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to pairlog (type 'help' for commands)")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Fprintf(a.out, "pairlog %s> ", a.status())
		line, readErr := a.reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "signup":
			a.Signup(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.Whoami(ctx)
		case "nickname":
			a.Nickname(ctx)
		case "passwd":
			a.Passwd(ctx)
		case "reset":
			a.Reset(ctx)
		case "code":
			a.Code(ctx)
		case "recode":
			a.Recode(ctx)
		case "link":
			a.Link(ctx)
		case "unlink":
			a.Unlink(ctx)
		case "partner":
			a.Partner(ctx)
		case "mark":
			a.Mark(ctx, args)
		case "cal":
			a.Cal(ctx, args)
		case "delete":
			a.Delete(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}

		if readErr != nil {
			return
		}
	}
}

func (a *App) help() {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Available commands: whoami, nickname, passwd, code, recode, link, unlink, partner, mark, cal, logout, delete, exit")
		fmt.Fprintln(a.out, "  mark <YYYY-MM-DD> [self|partner] [flow|intimacy]")
		fmt.Fprintln(a.out, "  cal [YYYY-MM]")
	} else {
		fmt.Fprintln(a.out, "Available commands: signup, login, reset, exit")
	}
}
