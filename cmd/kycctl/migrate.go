package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucardlabs/ucard-admin/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции к базе из DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := db.NewDatabase(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.RunMigrations(cmd.Context(), conn, cfg.DriverMigrationsPath())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "применено миграций: %d\n", applied)
			return nil
		},
	}
}
