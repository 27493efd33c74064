package main

import (
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/gormstore"
	"github.com/BrandonDHaskell/Checkin/server/internal/config"
	"github.com/BrandonDHaskell/Checkin/server/internal/db"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations to the configured database",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "only list pending migrations")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Info("memory storage has no schema")
		return nil

	case config.DriverSQLite:
		conn, err := db.Connect(ctx, db.Config{Path: cfg.Storage.Path})
		if err != nil {
			return err
		}
		defer conn.Close()

		pending, err := db.Pending(ctx, conn)
		if err != nil {
			return err
		}
		for _, name := range pending {
			logger.WithField("migration", name).Info("pending")
		}
		if migrateDryRun || len(pending) == 0 {
			logger.WithField("pending", len(pending)).Info("nothing applied")
			return nil
		}
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		logger.WithField("applied", len(pending)).Info("migrations applied")
		return nil

	default:
		if migrateDryRun {
			logger.Info("dry run is only supported for sqlite")
			return nil
		}
		gc, err := cfg.Storage.Gorm()
		if err != nil {
			return err
		}
		// New auto-migrates.
		st, err := gormstore.New(gc)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.WithField("driver", cfg.Storage.Driver).Info("schema up to date")
		return nil
	}
}
