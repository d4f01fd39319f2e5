// Package seeder populates a fresh deployment with a starter catalog and
// accounts. Seeding goes through the domain services so password hashing,
// summary initialization, and the audit trail behave exactly as they do
// for live requests.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"demogate/internal/account"
	"demogate/internal/demo"
	dErrors "demogate/pkg/domain-errors"
)

// AccountCreator is the slice of the account service the seeder consumes.
type AccountCreator interface {
	Create(ctx context.Context, req account.CreateRequest, actorID string) (*account.View, error)
}

// DemoCreator is the slice of the catalog service the seeder consumes.
type DemoCreator interface {
	Create(ctx context.Context, req demo.CreateRequest, actorID string) (*demo.View, error)
}

// Seeder writes starter data. Re-running against an already seeded store
// is safe; existing records are left alone.
type Seeder struct {
	accounts AccountCreator
	demos    DemoCreator
	logger   *slog.Logger
}

// New creates a seeder.
func New(accounts AccountCreator, demos DemoCreator, logger *slog.Logger) *Seeder {
	return &Seeder{accounts: accounts, demos: demos, logger: logger}
}

const seedActor = "seeder"

// SeedAll populates the catalog and accounts.
func (s *Seeder) SeedAll(ctx context.Context, adminPassword string) error {
	s.logger.Info("seeding starter data")

	demos, err := s.seedDemos(ctx)
	if err != nil {
		return fmt.Errorf("seed demos: %w", err)
	}
	accounts, err := s.seedAccounts(ctx, adminPassword)
	if err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}

	s.logger.Info("starter data seeded", "demos", demos, "accounts", accounts)
	return nil
}

func (s *Seeder) seedDemos(ctx context.Context) (int, error) {
	starter := []demo.CreateRequest{
		{
			ID:            "harborlight-dental",
			Title:         "Harborlight Dental",
			TitleES:       "Harborlight Dental",
			Description:   "Patient intake and scheduling walkthrough for dental clinics.",
			DescriptionES: "Recorrido de admisión y agenda de pacientes para clínicas dentales.",
			Icon:          "tooth",
			Industry:      "healthcare",
			Path:          "/demos/harborlight-dental",
			Tags:          []string{"scheduling", "intake"},
			TagsES:        []string{"agenda", "admisión"},
			Keywords:      "dental clinic patients scheduling",
			SortOrder:     1,
		},
		{
			ID:          "meridian-logistics",
			Title:       "Meridian Logistics",
			Description: "Fleet dispatch board with live delivery tracking.",
			Icon:        "truck",
			Industry:    "logistics",
			Path:        "/demos/meridian-logistics",
			Tags:        []string{"dispatch", "tracking"},
			Keywords:    "fleet delivery dispatch",
			SortOrder:   2,
		},
		{
			ID:          "copperfield-retail",
			Title:       "Copperfield Retail",
			Description: "Point-of-sale and inventory sync for small retailers.",
			Icon:        "storefront",
			Industry:    "retail",
			Path:        "https://retail.example.com/copperfield",
			Tags:        []string{"pos", "inventory"},
			Keywords:    "retail pos inventory",
			SortOrder:   3,
			IsExternal:  true,
		},
	}

	created := 0
	for _, req := range starter {
		if _, err := s.demos.Create(ctx, req, seedActor); err != nil {
			if isConflict(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedAccounts(ctx context.Context, adminPassword string) (int, error) {
	starter := []account.CreateRequest{
		{
			ID:       "admin",
			Name:     "Administrator",
			Password: adminPassword,
			IsAdmin:  true,
		},
		{
			ID:       "acme-dental",
			Name:     "Acme Dental",
			Password: "changeme-acme",
			Access:   []string{"harborlight-dental"},
		},
		{
			ID:       "northwind-freight",
			Name:     "Northwind Freight",
			Password: "changeme-northwind",
			Access:   []string{"meridian-logistics", "copperfield-retail"},
		},
	}

	created := 0
	for _, req := range starter {
		if _, err := s.accounts.Create(ctx, req, seedActor); err != nil {
			if isConflict(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func isConflict(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeConflict)
}
