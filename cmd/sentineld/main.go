// Command sentineld runs the dead-man's-switch supervisor: the watchdog
// scheduler and the check-in/switches HTTP surface share one process and
// one connection pool, per spec.md §5 ("shared resources").
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nullpulse/sentinel/internal/config"
	"github.com/nullpulse/sentinel/internal/db"
	"github.com/nullpulse/sentinel/internal/executor"
	httpx "github.com/nullpulse/sentinel/internal/http"
	"github.com/nullpulse/sentinel/internal/model"
	"github.com/nullpulse/sentinel/internal/observability"
	"github.com/nullpulse/sentinel/internal/scheduler"
	"github.com/nullpulse/sentinel/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("sentineld: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	if cfg.EnableTracing {
		shutdown, err := observability.InitTracer(context.Background(), "sentineld", cfg.OTELEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
		log = slog.New(observability.NewTraceHandler(log.Handler()))
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = postgres.ApplySchema(schemaCtx, pool)
	cancel()
	if err != nil {
		log.Error("schema apply failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	st := postgres.New(pool, prom)

	drivers := map[model.ActionType]executor.Driver{
		model.ActionEmail:   executor.NewCircuitBreakerDriver(executor.NewEmailDriver(cfg.SMTP), executor.BreakerConfig{}),
		model.ActionWebhook: executor.NewCircuitBreakerDriver(executor.NewWebhookDriver(), executor.BreakerConfig{}),
		model.ActionScript:  executor.NewScriptDriver(cfg.ScriptsDir, cfg.ScriptTimeoutSeconds),
	}
	runner := executor.NewRunner(st, drivers, prom)

	sched := scheduler.New(st, runner, prom, scheduler.Options{TickInterval: cfg.TickInterval})

	recoverCtx, recoverCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := sched.Recover(recoverCtx); err != nil {
		recoverCancel()
		log.Error("crash recovery failed", "err", err)
		os.Exit(1)
	}
	recoverCancel()

	sched.Start(ctx)

	router := httpx.NewRouter(pool, st, sched, prom)

	srv := &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server graceful shutdown failed", "err", err)
		_ = srv.Close()
	} else {
		log.Info("server stopped gracefully")
	}

	sched.Stop(shutdownCtx)
	log.Info("scheduler stopped")
}
