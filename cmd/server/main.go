package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/gus-tavo01/forums-api-sub000/internal/app"
	"github.com/gus-tavo01/forums-api-sub000/internal/auth"
	"github.com/gus-tavo01/forums-api-sub000/internal/db"
	"github.com/gus-tavo01/forums-api-sub000/internal/forum"
	httpx "github.com/gus-tavo01/forums-api-sub000/internal/http"
	"github.com/gus-tavo01/forums-api-sub000/internal/metrics"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository/memory"
	"github.com/gus-tavo01/forums-api-sub000/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env-file", "", "path to a .env file")
	addr := flag.String("addr", "", "listen address, overrides ADDR")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath, *envFile)
	app.Must(err)
	if *addr != "" {
		cfg.Addr = *addr
	}
	log, err := app.NewLogger(cfg)
	app.Must(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	m := metrics.New()
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenLifetime)
	svc := forum.NewService(forum.Deps{
		Store:     store,
		Hasher:    auth.Hasher{Cost: cfg.BcryptCost},
		Tokens:    tokens,
		Logger:    log,
		Rollbacks: m,
	})
	handler := httpx.NewServer(httpx.Deps{
		Service:        svc,
		Tokens:         tokens,
		Accounts:       store,
		Logger:         log,
		Metrics:        m,
		RateLimit:      rate.Limit(cfg.RateLimitRPS),
		RateBurst:      cfg.RateLimitBurst,
		RequestTimeout: 10 * time.Second,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

// openStore uses PostgreSQL when a DATABASE_URL is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg app.Config, log *logrus.Logger) (repository.Store, func()) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return memory.New(), func() {}
	}
	d, err := db.Open(ctx, cfg.DatabaseURL, db.Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	app.Must(err)
	app.Must(db.Migrate(ctx, d, cfg.SchemaPath))
	log.WithField("schema", cfg.SchemaPath).Info("database ready")
	return postgres.New(d), func() { _ = d.Close() }
}
