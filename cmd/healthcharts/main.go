package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "healthcharts/internal/adapter/http"
	"healthcharts/internal/adapter/memory"
	"healthcharts/internal/adapter/postgres"
	"healthcharts/internal/adapter/resilient"
	"healthcharts/internal/app"
	"healthcharts/internal/chart"
	"healthcharts/internal/config"
	"healthcharts/internal/domain"
	"healthcharts/internal/observability"
	"healthcharts/internal/scheduler"
	"healthcharts/internal/store"
)

type repositories struct {
	samples  domain.SampleRepository
	perms    domain.PermissionRepository
	users    domain.UserRepository
	sessions domain.SessionRepository
	close    func() error
}

func openRepositories(databaseURL string) (repositories, error) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set; using in-memory storage")
		db := memory.New()
		return repositories{db, db, db, db.NewSessionRepo(), func() error { return nil }}, nil
	}
	db, err := postgres.Open(databaseURL)
	if err != nil {
		return repositories{}, err
	}
	return repositories{db, db, db, postgres.NewSessionRepo(db), db.Close}, nil
}

func main() {
	cfg, err := config.Load(env("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	repos, err := openRepositories(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = repos.close() }()

	metrics := observability.NewMetrics()

	source := resilient.New(
		app.NewHealthDataService(repos.samples, repos.perms, cfg.Location),
		resilient.Config{
			Name:     "samples",
			Failures: cfg.Breaker.Failures,
			Timeout:  cfg.Breaker.Timeout,
			Observer: metrics,
			Backoff: resilient.BackoffConfig{
				MaxRetries:      cfg.Breaker.MaxRetries,
				InitialInterval: 200 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
	)

	chartsSvc := app.NewChartsService(source, store.NewRegistry(), app.ChartsConfig{
		Window:     chart.Window{Days: cfg.Charts.WindowDays},
		Location:   cfg.Location,
		GoalWeight: cfg.Charts.GoalWeightLb,
		Observer:   metrics,
	})
	samplesSvc := app.NewSamplesService(source, chartsSvc)
	permSvc := app.NewPermissionService(repos.perms)
	authSvc := app.NewAuthService(repos.users, repos.sessions)

	srv := adapthttp.New(chartsSvc, samplesSvc, permSvc, authSvc, cfg.WebDir).WithMetrics(metrics)
	if cfg.ForwardAuth {
		log.Println("forward auth enabled; trusting Remote-User")
		srv.WithForwardAuth()
	}
	if cfg.SSOEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		cancel()
		if err != nil {
			log.Fatalf("sso: %v", err)
		}
		srv.WithOIDC(oidcCfg)
	}

	sched := scheduler.New(chartsSvc, authSvc, cfg.Location)
	if err := sched.Register(cfg.Schedule.RefreshCron, cfg.Schedule.SessionCleanupCron); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
