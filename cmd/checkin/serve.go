package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
	"github.com/BrandonDHaskell/Checkin/server/internal/grpcapi"
	"github.com/BrandonDHaskell/Checkin/server/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, the web views and the gRPC health service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.IsDev() {
		n, err := service.SeedDev(ctx, st, cfg.SeedRegistrations())
		if err != nil {
			return err
		}
		if n > 0 {
			logger.WithField("count", n).Info("seeded dev registrations")
		}
	}

	attendees := service.NewAttendeeService(st, service.Options{
		PublicURL: cfg.PublicURL,
		Logger:    logger,
	})

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    logger,
		Addr:      cfg.HTTPAddr,
		Attendees: attendees,
	})

	var grpcSrv *grpcapi.Server
	var reporter service.HealthReporter
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return errors.Wrapf(err, "listen %s", cfg.GRPCAddr)
		}
		grpcSrv = grpcapi.NewServer(logger)
		reporter = grpcSrv
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				logger.WithError(err).Error("grpc server error")
				stop()
			}
		}()
	}

	monitor := service.NewHealthMonitor(attendees, reporter, service.HealthMonitorConfig{
		IntervalSeconds: cfg.Health.IntervalSeconds,
	}, logger)
	monitor.Start(ctx)

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	monitor.Stop()
	_ = srv.Shutdown(shutdownCtx)
	if grpcSrv != nil {
		grpcSrv.Stop(shutdownCtx)
	}
	return nil
}
