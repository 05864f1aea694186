package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/config"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	metarepo "github.com/dmitrijs2005/noxus/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/noxus/internal/client/session"
	"github.com/dmitrijs2005/noxus/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	logger logging.Logger
	client client.Client
	ctrl   *session.Controller
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	mode     Mode
	lastView models.View
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, metarepo.NewSQLiteRepository(db), l)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, apiClient, l, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, cl client.Client, l logging.Logger, in io.Reader, out io.Writer) *App {
	ctrl := session.New(cl, session.Options{
		AppScheme:       c.AppScheme,
		RefreshInterval: c.SessionCheckInterval,
	}, l)

	return &App{
		config: c,
		logger: l.With("module", "cli"),
		client: cl,
		ctrl:   ctrl,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// Run starts the deep link listener, the session controller and the
// connectivity watcher, then serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	links, err := ListenLinks(ctx, a.config.DeepLinkAddr, a.logger)
	if err != nil {
		a.logger.Warn(ctx, "deep link listener disabled", "error", err)
	}

	a.ctrl.Observe(a.onChange)
	go func() { _ = a.ctrl.Run(ctx, links) }()
	go a.StartOnlineStatusWatcher(ctx, a.config.SessionCheckInterval)

	fmt.Fprintln(a.out, "Welcome to noxus (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) close() {
	if err := a.client.Close(); err != nil {
		a.logger.Warn(context.Background(), "close client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// onChange reports view changes that happen outside a command, e.g. after
// a deep link.
func (a *App) onChange(s session.Snapshot) {
	a.mu.Lock()
	changed := a.lastView != s.View
	a.lastView = s.View
	a.mu.Unlock()

	if changed && !s.Loading {
		fmt.Fprintf(a.out, "\n-> %s\n", viewTitle(s.View))
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isSignedIn() bool {
	return a.ctrl.Snapshot().State != session.Unauthenticated
}

func (a *App) getStatus() string {
	snap := a.ctrl.Snapshot()

	s := snap.State.String()
	if snap.Email != "" {
		s = snap.Email + " " + s
	}
	a.mu.Lock()
	if a.mode != "" {
		s += " " + string(a.mode)
	}
	a.mu.Unlock()
	return fmt.Sprintf("(%s)", s)
}
