package main

import (
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo registrations that are missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, closeStore, err := openStore(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := service.SeedDev(cmd.Context(), st, cfg.SeedRegistrations())
		if err != nil {
			return err
		}
		logger.WithField("count", n).Info("seeded registrations")
		return nil
	},
}
