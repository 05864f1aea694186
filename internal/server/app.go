// Package server wires the identity and profile store together: it opens
// Postgres, applies migrations, builds the services and runs the gRPC and
// HTTP servers until the context is cancelled or a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/config"
	"github.com/dmitrijs2005/noxus/internal/server/httpapi"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/noxus/internal/server/services"

	gs "github.com/dmitrijs2005/noxus/internal/server/grpc"
)

var (
	openDB         = repomanager.OpenPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	profileService *services.ProfileService
	avatarService  *services.AvatarService
	oauthService   *services.OAuthService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c, services.NewLogMailer(logger), logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    us,
		profileService: services.NewProfileService(db, rm),
		avatarService:  services.NewAvatarService(db, rm, c),
		oauthService:   services.NewOAuthService(us, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) servers() []runner {
	return []runner{
		gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.profileService,
			app.avatarService, app.oauthService, app.config.SecretKey),
		httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.oauthService),
	}
}

// Run serves until ctx is cancelled, a signal arrives or one of the servers
// fails; a failing server stops the others.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.runAll(ctx, cancelFunc, app.servers())

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

func (app *App) runAll(ctx context.Context, cancelFunc context.CancelFunc, rs []runner) {
	var wg sync.WaitGroup

	for _, r := range rs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Wait()
}
