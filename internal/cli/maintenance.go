package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/db"
	"github.com/terraincognita07/healthpulse/internal/models"
	embeddedmigrations "github.com/terraincognita07/healthpulse/migrations"
	"gorm.io/gorm"
)

const minPruneAge = 24 * time.Hour

// RunMigrateCommand applies pending migrations and prints each one it ran.
func RunMigrateCommand(dbPath string, out io.Writer, logger zerolog.Logger) error {
	database, err := db.Open(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	applied, err := db.NewMigrator(database, embeddedmigrations.Files, logger).Apply()
	for _, name := range applied {
		fmt.Fprintf(out, "Applied %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintf(out, "Database %s is up to date\n", dbPath)
	}
	return nil
}

// RunSeedCommand inserts the default map wards when the ward table is empty.
func RunSeedCommand(dbPath string, out io.Writer, logger zerolog.Logger) error {
	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	seeded, err := seedWards(db.NewWardRepository(database))
	if err != nil {
		return err
	}
	if seeded == 0 {
		fmt.Fprintln(out, "Wards already present, nothing to seed")
		return nil
	}
	fmt.Fprintf(out, "Seeded %d wards\n", seeded)
	return nil
}

func RunPruneReportsCommand(dbPath string, olderThan time.Duration, now time.Time, out io.Writer, logger zerolog.Logger) error {
	if olderThan < minPruneAge {
		return fmt.Errorf("--older-than must be at least %s", minPruneAge)
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	cutoff := now.Add(-olderThan)
	deleted, err := db.NewReportRepository(database).DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		return fmt.Errorf("prune reports: %w", err)
	}

	logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("reports pruned")
	fmt.Fprintf(out, "Deleted %d reports created before %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}

type wardSeeder interface {
	Count() (int64, error)
	CreateBatch(wards []models.Ward) error
}

func seedWards(wards wardSeeder) (int, error) {
	count, err := wards.Count()
	if err != nil {
		return 0, fmt.Errorf("count wards: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	defaults := models.DefaultMapWards()
	if len(defaults) == 0 {
		return 0, errors.New("no default wards defined")
	}
	if err := wards.CreateBatch(defaults); err != nil {
		return 0, fmt.Errorf("seed wards: %w", err)
	}
	return len(defaults), nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
