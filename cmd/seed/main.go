// Package main seeds a database with the starter catalog and accounts.
// It goes through the real domain services so hashes, summaries, and the
// audit trail come out exactly as live traffic would produce them.
package main

import (
	"context"
	"os"

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
	"demogate/internal/seeder"
	"demogate/internal/token"
)

func main() {
	log := logger.New()

	secrets := config.Default()
	cfg, err := config.Load(secrets)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	adminPassword, err := secrets.MustGet("DEMOGATE_ADMIN_PASSWORD")
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	accountStore, err := account.NewSQLiteStore(db)
	if err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}
	demoStore, err := demo.NewSQLiteStore(db)
	if err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}
	ledgerStore, err := ledger.NewSQLiteStore(db)
	if err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}
	summaryStore, err := summary.NewSQLiteStore(db)
	if err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}
	auditStore, err := audit.NewSQLiteStore(db)
	if err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	tokens := token.New(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	policy := access.NewPolicy(tokens)
	recorder := audit.NewRecorder(auditStore, audit.WithRecorderLogger(log))

	activitySvc := activity.NewService(ledgerStore, summaryStore, activity.WithLogger(log))
	accountSvc := account.NewService(accountStore, tokens, policy, activitySvc, recorder,
		account.WithLogger(log))
	demoSvc := demo.NewService(demoStore, recorder, demo.WithLogger(log))

	if err := seeder.New(accountSvc, demoSvc, log).SeedAll(context.Background(), adminPassword); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}
