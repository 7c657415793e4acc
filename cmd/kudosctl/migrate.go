package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"kudos/internal/platform/db"
)

var seedAdmin bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := db.Migrate(ctx, cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied", "dir", cfg.MigrationsDir)
		if !seedAdmin {
			return nil
		}

		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Seed(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
		slog.Info("admin seeded", "email", cfg.SeedAdminEmail)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&seedAdmin, "seed", false, "also create the admin account from SEED_ADMIN_*")
}
