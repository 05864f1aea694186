package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignUp(ctx context.Context, args []string) error
	SignIn(ctx context.Context, args []string) error
	ResetPassword(ctx context.Context, args []string) error
	OAuth(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	UpdatePassword(ctx context.Context, args []string) error
	SignOut(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Levels(ctx context.Context, args []string) error
	Navigate(ctx context.Context, args []string) error
	EditDays(ctx context.Context, args []string) error
	EditDate(ctx context.Context, args []string) error
	Relapse(ctx context.Context, args []string) error
	CompleteOnboarding(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to
// a until EOF, "exit" or "quit". Command handlers report their own errors.
//
//	Signed out:
//	  signup, signin, reset [email], oauth [provider], link <url>, exit
//
//	Signed in:
//	  show, levels, go <view>, days <n>, date <YYYY-MM-DD>, relapse,
//	  onboard, avatar <path>, password, link <url>, signout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("noxus %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: show, levels, go <view>, days <n>, date <YYYY-MM-DD>, relapse, onboard, avatar <path>, password, link <url>, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, reset [email], oauth [provider], link <url>, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx, args)
		case "signin", "login":
			_ = a.SignIn(ctx, args)
		case "reset":
			_ = a.ResetPassword(ctx, args)
		case "oauth":
			_ = a.OAuth(ctx, args)
		case "link":
			_ = a.Link(ctx, args)
		case "password":
			_ = a.UpdatePassword(ctx, args)
		case "signout", "logout":
			_ = a.SignOut(ctx, args)
		case "show", "s":
			_ = a.Show(ctx, args)
		case "levels":
			_ = a.Levels(ctx, args)
		case "go", "view":
			_ = a.Navigate(ctx, args)
		case "days":
			_ = a.EditDays(ctx, args)
		case "date":
			_ = a.EditDate(ctx, args)
		case "relapse":
			_ = a.Relapse(ctx, args)
		case "onboard":
			_ = a.CompleteOnboarding(ctx, args)
		case "avatar":
			_ = a.Avatar(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
