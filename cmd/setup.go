package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/igsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a starter configuration file when one is missing and applies
// database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("created configuration file", "path", configPath)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return r.writePlain("Rolled back the most recent migration.\n")
	}

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return r.writePlain("Setup complete. Database is at %s.\n", r.config.Database.Path)
}
