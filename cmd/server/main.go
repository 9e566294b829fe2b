package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/config"
	"pomodoro/timer/internal/db"
	"pomodoro/timer/internal/handler"
	"pomodoro/timer/internal/logging"
	"pomodoro/timer/internal/recovery"
	"pomodoro/timer/internal/repository"
	"pomodoro/timer/internal/router"
	"pomodoro/timer/internal/service"
	"pomodoro/timer/internal/timer"
)

const (
	slotTimeout  = 2 * time.Second
	writeTimeout = 5 * time.Second
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	// SIGHUP stands in for the terminal closing under us.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	if err := Run(context.Background(), cfg, signals); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

// Run serves the API until a lifecycle signal arrives or ctx is cancelled.
// A phase still running at that point is snapshotted to the recovery slot
// and replayed into the store on the next start.
func Run(ctx context.Context, cfg config.Config, signals <-chan os.Signal) error {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if _, err := db.RunMigrations(ctx, database, cfg.MigrationsDir); err != nil {
		return err
	}

	slot, closeSlot := openSlot(ctx, cfg)
	defer closeSlot()

	sessionRepo := repository.NewSessionRepository(database)
	recoverer := recovery.NewRecoverer(slot, sessionRepo, slotTimeout)
	recoverer.Replay(ctx)

	writer := timer.NewWriter(sessionRepo, writeTimeout)
	defer writer.Close()
	tm := timer.New(timer.Options{Recorder: writer})
	defer tm.Close()

	authService := service.NewAuthService(cfg.AuthPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	if !authService.Enabled() {
		log.Warn().Msg("AUTH_PASSWORD_HASH is not set, the API is open to anyone who can reach it")
	}
	engine := router.New(authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Timer:   handler.NewTimerHandler(service.NewTimerService(tm)),
		Session: handler.NewSessionHandler(service.NewSessionService(sessionRepo, time.Local)),
		Task:    handler.NewTaskHandler(service.NewTaskService(repository.NewTaskRepository(database))),
	}, cfg.CORSOrigins)

	// Cancelling the base context ends open event streams before shutdown.
	baseCtx, cancelRequests := context.WithCancel(ctx)
	defer cancelRequests()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Timer daemon listening")
		errCh <- srv.ListenAndServe()
	}()

	guard := recovery.NewGuard(tm, recoverer)
	waitCtx, stopWaiting := context.WithCancel(ctx)
	defer stopWaiting()
	sigCh := make(chan os.Signal, 1)
	go func() { sigCh <- guard.Wait(waitCtx, signals) }()

	var serveErr error
	select {
	case sig := <-sigCh:
		if sig != nil {
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}
	stopWaiting()

	cancelRequests()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown did not complete cleanly")
	}
	return serveErr
}

// openSlot picks the recovery slot backend. Redis falls back to the file slot
// when it cannot be reached, since a snapshot that cannot be written is lost.
func openSlot(ctx context.Context, cfg config.Config) (recovery.Slot, func()) {
	fileSlot := recovery.NewFileSlot(cfg.RecoveryPath)
	if cfg.RecoveryBackend != config.RecoveryRedis {
		return fileSlot, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, slotTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, using file recovery slot")
		_ = client.Close()
		return fileSlot, func() {}
	}

	log.Info().Str("addr", cfg.RedisAddr).Str("key", cfg.RecoveryKey).Msg("Using Redis recovery slot")
	return recovery.NewRedisSlot(client, cfg.RecoveryKey), func() { _ = client.Close() }
}
