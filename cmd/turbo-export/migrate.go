package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"turbo-export/internal/config"
	"turbo-export/internal/shell/storage"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply run history schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			switch cfg.Database.Type {
			case "sqlite":
				repo, err := storage.NewSQLiteExportRunRepository(cfg.Database.Path)
				if err != nil {
					return err
				}
				defer repo.Close()
			case "postgres":
				db, err := storage.OpenPostgres(postgresOptions(cfg))
				if err != nil {
					return err
				}
				defer db.Close()
				if err := storage.MigratePostgres(db); err != nil {
					return err
				}
			default:
				log.Printf("Database type %s has no schema to migrate", cfg.Database.Type)
				return nil
			}

			log.Printf("Migrations applied for %s", cfg.Database.Type)
			return nil
		},
	}
}
