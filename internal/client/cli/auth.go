package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noxus/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, errorColor.Sprint("Error:"), err)
	return err
}

func (a *App) readCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword("Enter password", a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return email, string(pw), nil
}

// SignUp prompts for an email and password, creates the account and signs
// it in.
func (a *App) SignUp(ctx context.Context, _ []string) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return a.fail(err)
	}
	if err := a.ctrl.SignUp(ctx, email, password); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Success!")
	return a.Show(ctx, nil)
}

func (a *App) SignIn(ctx context.Context, _ []string) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return a.fail(err)
	}
	if err := a.ctrl.SignIn(ctx, email, password); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// ResetPassword requests a recovery email; the email may be given as an
// argument.
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return a.fail(err)
		}
	}
	if err := a.ctrl.ResetPassword(ctx, email); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "If the address is registered, a recovery link is on its way.")
	return nil
}

// OAuth prints the provider page to open; google unless named.
func (a *App) OAuth(ctx context.Context, args []string) error {
	provider := "google"
	if len(args) > 0 {
		provider = args[0]
	}
	url, err := a.ctrl.OAuthURL(ctx, provider)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Open this page to continue:")
	fmt.Fprintln(a.out, url)
	return nil
}

// Link applies a deep link pasted by the user. It goes through the
// controller's dispatch loop like links from the listener.
func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: link <url>")
		return nil
	}
	if err := a.ctrl.DispatchDeepLink(ctx, args[0]); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// UpdatePassword asks for the new password twice.
func (a *App) UpdatePassword(ctx context.Context, _ []string) error {
	pw, err := getPassword("New password", a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(pw)

	again, err := getPassword("Repeat password", a.out)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(again)

	if string(pw) != string(again) {
		return a.fail(errPasswordMismatch)
	}
	if err := a.ctrl.UpdatePassword(ctx, string(pw)); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Password updated.")
	return a.Show(ctx, nil)
}

func (a *App) SignOut(ctx context.Context, _ []string) error {
	_ = a.ctrl.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
