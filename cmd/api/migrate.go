package main

import (
	"github.com/abduss/blogd/internal/storage"
	"github.com/abduss/blogd/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := storage.NewPostgresPool(cmd.Context(), cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := storage.Migrate(cmd.Context(), pool, migrations.FS)
		if err != nil {
			return err
		}
		log.Info("schema applied", zap.Strings("files", applied))
		return nil
	},
}
