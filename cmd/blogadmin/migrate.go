package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/strogmv/blogadmin/internal/adapter/repository/orm"
	"github.com/strogmv/blogadmin/internal/app"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or extend the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBDriver == "memory" {
				return fmt.Errorf("nothing to migrate for the memory driver")
			}
			db, err := app.OpenDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer orm.Close(db)

			if err := orm.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.From(cmd.Context()).Info("schema migrated", slog.String("driver", cfg.DBDriver))
			return nil
		},
	}
}
