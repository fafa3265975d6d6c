package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristyanmorais/desafio-gac/internal/api"
	"github.com/cristyanmorais/desafio-gac/internal/config"
	"github.com/cristyanmorais/desafio-gac/internal/db"
	"github.com/cristyanmorais/desafio-gac/internal/directory"
	"github.com/cristyanmorais/desafio-gac/internal/events"
	"github.com/cristyanmorais/desafio-gac/internal/events/kafka"
	"github.com/cristyanmorais/desafio-gac/internal/ledger"
	"github.com/cristyanmorais/desafio-gac/internal/logger"
	"github.com/cristyanmorais/desafio-gac/internal/metrics"
	"github.com/cristyanmorais/desafio-gac/internal/repository/postgres"
	"github.com/cristyanmorais/desafio-gac/internal/reversal"
	"github.com/cristyanmorais/desafio-gac/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	var pub events.Publisher = events.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer func() { _ = kp.Close() }()
		pub = kp
	}

	wp := worker.NewPool(4)
	defer wp.Stop()

	dir := directory.NewPostgres(pool)
	repos := postgres.NewRepositories(pool)
	engine := ledger.NewEngine(dir, repos.Ledger, pub, wp)
	workflow := reversal.NewWorkflow(dir, engine, repos.Reversals, pub, wp)

	r := api.NewRouter(cfg, dir, engine, workflow)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
