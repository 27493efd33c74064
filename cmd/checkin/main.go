package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Checkin/server/internal/config"
	"github.com/BrandonDHaskell/Checkin/server/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:               "checkin",
	Short:             "checkin runs the event check-in service",
	Long:              "checkin serves attendee lookup and check-in for an event and its sub-events",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configFile string
	cfg        config.Config
	logger     *log.Logger
)

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	logger, err = logging.Init(cfg.Logging)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"command": cmd.Name(),
		"env":     cfg.Env,
		"storage": cfg.Storage.Driver,
	}).Debug("loaded config")
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "the config file to use")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, scanCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
