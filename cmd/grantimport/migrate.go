package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/grantsheet/internal/config"
	"github.com/JonMunkholm/grantsheet/internal/database"
	"github.com/JonMunkholm/grantsheet/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			return database.Migrate(cmd.Context(), pool)
		},
	}
}
