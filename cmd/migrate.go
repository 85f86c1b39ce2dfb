package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/core/database"
	"github.com/frahmantamala/stagiaire-management/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configDir)
	if err != nil {
		log.Fatal(err)
	}

	// sqlite is the development driver; its schema comes from the gorm models
	if cfg.Database.Driver == internal.DriverSQLite {
		if migrateRollback {
			log.Fatal("rollback is only supported on postgres")
		}
		db, err := database.Open(cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to open DB: %v\n", err)
		}
		defer database.Close(db)
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal(err)
		}
		logger.LoggerWrapper().Info("sqlite schema migrated")
		return nil
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
