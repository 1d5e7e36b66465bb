// Package server wires the authentication core together: storage backends,
// services, the hygiene sweeper, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/logging"
	"github.com/dmitrijs2005/blogauth/internal/server/config"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/blogauth/internal/server/services"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// App owns the assembled authentication subsystem. The session manager and
// user service are the surface an embedding request layer talks to.
type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	Sessions *services.Manager
	Users    *services.UserService
	Cascade  *services.Cascade
	sweeper  *services.Sweeper
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	hasher, err := cryptox.NewHasher(cfg.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN, sessions.Options{
		MaxPerUser: cfg.MaxConcurrentSessions,
		CapPolicy:  sessions.CapPolicy(cfg.SessionCapPolicy),
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	// Attempt counters live in Redis when an address is configured,
	// otherwise they share the Postgres pool.
	var attemptRepo attempts.Repository
	if cfg.RedisAddr != "" {
		attemptRepo = attempts.NewRedisRepository(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		attemptRepo = rm.Attempts()
	}

	clock := timex.RealClock{}
	usersRepo := rm.Users(rm.Conn())

	verifier := services.NewVerifier(usersRepo, hasher)
	limiter := services.NewRateLimiter(attemptRepo, clock, cfg.RateLimitWindow, cfg.RateLimitMaxAttempts)
	guard := services.NewLockoutGuard(attemptRepo, clock, cfg.LockoutThreshold, cfg.LockoutDuration)
	manager := services.NewManager(verifier, limiter, guard, rm.Sessions(), clock, cfg.SessionLifetime)
	cascade := services.NewCascade(rm.Sessions())
	userService := services.NewUserService(usersRepo, hasher, cascade)
	sweeper := services.NewSweeper(rm.Sessions(), attemptRepo, clock, cfg.SweepInterval, logger)

	return &App{
		config:   cfg,
		logger:   logger,
		repos:    rm,
		Sessions: manager,
		Users:    userService,
		Cascade:  cascade,
		sweeper:  sweeper,
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

// Run applies migrations, starts the hygiene sweeper, and blocks until the
// context is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting auth server")

	if err := app.repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	// A non-positive sweep interval disables the sweeper.
	if app.config.SweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweeper.Run(ctx)
		}()
	}

	<-ctx.Done()
	wg.Wait()

	app.logger.Info(context.Background(), "auth server stopped")
	return nil
}
