package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"demogate/internal/access"
	"demogate/internal/account"
	"demogate/internal/activity"
	"demogate/internal/activity/ledger"
	"demogate/internal/activity/summary"
	"demogate/internal/audit"
	"demogate/internal/demo"
	"demogate/internal/platform/config"
	"demogate/internal/platform/database"
	"demogate/internal/platform/logger"
	"demogate/internal/platform/metrics"
	"demogate/internal/platform/tracing"
	"demogate/internal/seeder"
	"demogate/internal/token"
	httptransport "demogate/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	secrets := config.Default()
	cfg, err := config.Load(secrets)
	if err != nil {
		return err
	}

	log.Info("initializing demogate", "addr", cfg.Addr, "db_path", cfg.DBPath)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	accountStore, err := account.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	demoStore, err := demo.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	ledgerStore, err := ledger.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	summaryStore, err := summary.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	auditStore, err := audit.NewSQLiteStore(db)
	if err != nil {
		return err
	}

	m := metrics.New()
	tracer := tracing.NewOTel()
	tokens := token.New(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	policy := access.NewPolicy(tokens)

	recorder := audit.NewRecorder(auditStore,
		audit.WithAsyncBuffer(256),
		audit.WithRecorderLogger(log),
		audit.WithRecorderMetrics(m),
	)
	defer recorder.Close()

	activitySvc := activity.NewService(ledgerStore, summaryStore,
		activity.WithMetrics(m),
		activity.WithLogger(log),
		activity.WithTracer(tracer),
	)
	accountSvc := account.NewService(accountStore, tokens, policy, activitySvc, recorder,
		account.WithMetrics(m),
		account.WithLogger(log),
		account.WithTracer(tracer),
	)
	demoSvc := demo.NewService(demoStore, recorder, demo.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if secrets.Get("DEMOGATE_SEED", "false") == "true" {
		adminPassword, err := secrets.MustGet("DEMOGATE_ADMIN_PASSWORD")
		if err != nil {
			return err
		}
		if err := seeder.New(accountSvc, demoSvc, log).SeedAll(ctx, adminPassword); err != nil {
			return err
		}
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Metrics:     m,
		Policy:      policy,
		CORSOrigins: cfg.CORSOrigins,
		Accounts:    account.NewHandler(accountSvc, log),
		Activity:    activity.NewHandler(activitySvc, log),
		Demos:       demo.NewHandler(demoSvc, log),
		Audit:       audit.NewHandler(recorder, log),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
