package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/adapter/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := postgres.Connect(cmd.Context(), a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			a.logger.Info("migrations applied", zap.Int64s("versions", applied))
			return nil
		},
	}
}
