package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	signedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isSignedIn() bool { return f.signedIn }
func (f *fakeExec) SignUp(ctx context.Context, args []string) error {
	return f.record("signup", args)
}
func (f *fakeExec) SignIn(ctx context.Context, args []string) error {
	f.signedIn = true
	return f.record("signin", args)
}
func (f *fakeExec) ResetPassword(ctx context.Context, args []string) error {
	return f.record("reset", args)
}
func (f *fakeExec) OAuth(ctx context.Context, args []string) error { return f.record("oauth", args) }
func (f *fakeExec) Link(ctx context.Context, args []string) error  { return f.record("link", args) }
func (f *fakeExec) UpdatePassword(ctx context.Context, args []string) error {
	return f.record("password", args)
}
func (f *fakeExec) SignOut(ctx context.Context, args []string) error {
	f.signedIn = false
	return f.record("signout", args)
}
func (f *fakeExec) Show(ctx context.Context, args []string) error   { return f.record("show", args) }
func (f *fakeExec) Levels(ctx context.Context, args []string) error { return f.record("levels", args) }
func (f *fakeExec) Navigate(ctx context.Context, args []string) error {
	return f.record("go", args)
}
func (f *fakeExec) EditDays(ctx context.Context, args []string) error { return f.record("days", args) }
func (f *fakeExec) EditDate(ctx context.Context, args []string) error { return f.record("date", args) }
func (f *fakeExec) Relapse(ctx context.Context, args []string) error {
	return f.record("relapse", args)
}
func (f *fakeExec) CompleteOnboarding(ctx context.Context, args []string) error {
	return f.record("onboard", args)
}
func (f *fakeExec) Avatar(ctx context.Context, args []string) error { return f.record("avatar", args) }

func silencePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrint(t)

	input := strings.Join([]string{
		"help",
		"signin",
		"help",
		"days 12",
		"date 2025-05-01",
		"go progression",
		"link com.ascennoxus.app://google-auth#access_token=A&refresh_token=B",
		"",
		"relapse",
		"signout",
		"exit",
		"show",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"signin", "days", "date", "go", "link", "relapse", "signout"}, exec.calls)
	assert.Equal(t, []string{"12"}, exec.args[1])
	assert.Equal(t, []string{"progression"}, exec.args[3])
}

func TestRunREPL_UnknownAndEOF(t *testing.T) {
	lines := silencePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("foobar\nshow")))

	assert.Equal(t, []string{"show"}, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
}

func TestRunREPL_Aliases(t *testing.T) {
	silencePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" },
		bufio.NewReader(strings.NewReader("register\nlogin\nlogout\ns\nview dashboard\nquit\n")))

	assert.Equal(t, []string{"signup", "signin", "signout", "show", "go"}, exec.calls)
}
