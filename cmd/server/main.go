// Command server runs the forms API: Telegram Mini App authentication,
// form reads, and response submission over SQLite.
//
// Startup order matters: configuration is validated before anything touches
// the network or the database, so a missing bot token or signing secret
// fails the process immediately instead of producing a server that rejects
// every caller.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/studsovet/go-forms-backend/internal/auth"
	"github.com/studsovet/go-forms-backend/internal/config"
	httpapi "github.com/studsovet/go-forms-backend/internal/http"
	"github.com/studsovet/go-forms-backend/internal/observability"
	"github.com/studsovet/go-forms-backend/internal/repo"
	"github.com/studsovet/go-forms-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; deployments set real env vars.
	if !sysutil.IsTruthy(os.Getenv("SKIP_DOTENV")) {
		_ = godotenv.Load()
	}

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	log.Info().
		Str("version", appVersion).
		Str("port", cfg.Port).
		Str("db_path", cfg.DBPath).
		Msg("starting forms api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing first so DB and HTTP instrumentation attach to a real provider.
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("gorm tracing plugin failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	verifier := auth.NewVerifier(cfg.TelegramBotToken)
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("token service init failed")
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{DB: db, Verifier: verifier, Tokens: tokens}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
