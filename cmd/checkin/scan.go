package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
	"github.com/BrandonDHaskell/Checkin/server/internal/client"
	"github.com/BrandonDHaskell/Checkin/server/internal/scanner"
)

var (
	scanServer   string
	scanSubevent string
	scanOnce     bool
	scanTimeout  time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a scan station reading QR payloads from a keyboard-wedge reader on stdin",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanServer, "server", "", "check-in server base URL (defaults to public_url, then http://localhost:8080)")
	scanCmd.Flags().StringVar(&scanSubevent, "subevent", string(types.SubeventMain), "sub-event to check attendees into")
	scanCmd.Flags().BoolVar(&scanOnce, "once", true, "stop after the first scanned code")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Second, "per-request timeout")
}

func runScan(cmd *cobra.Command, _ []string) error {
	sub, ok := types.ParseSubevent(scanSubevent)
	if !ok {
		return errors.Errorf("unknown subevent %q", scanSubevent)
	}

	base := scanServer
	if base == "" {
		base = cfg.PublicURL
	}
	if base == "" {
		base = "http://localhost:8080"
	}

	api := client.New(client.Config{BaseURL: base, Timeout: scanTimeout})
	handler := func(ctx context.Context, id string) error {
		return api.CheckIn(ctx, id, sub)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := scanner.NewSession(
		scanner.NewLineSource(os.Stdin),
		scanner.Config{Continuous: !scanOnce},
		handler,
		logger.WithField("subevent", sub),
	)
	logger.WithFields(log.Fields{"server": base, "subevent": sub}).Info("scan station ready")
	return session.Run(ctx)
}
