package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/gormstore"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/memory"
	sqlitestore "github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/sqlite"
	"github.com/BrandonDHaskell/Checkin/server/internal/config"
	"github.com/BrandonDHaskell/Checkin/server/internal/db"
)

// openStore builds the single store handle shared by every handler. The
// returned close func releases it.
func openStore(ctx context.Context, sc config.StorageConfig) (store.Store, func(), error) {
	switch sc.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return memory.New(), func() {}, nil

	case config.DriverSQLite:
		conn, err := db.Open(ctx, db.Config{Path: sc.Path})
		if err != nil {
			return nil, nil, err
		}
		writer := db.NewWorker(conn)
		logger.WithField("path", sc.Path).Info("sqlite storage ready")
		return sqlitestore.New(conn, writer), func() {
			writer.Close()
			_ = conn.Close()
		}, nil

	case config.DriverPostgres, config.DriverMySQL:
		gc, err := sc.Gorm()
		if err != nil {
			return nil, nil, err
		}
		st, err := gormstore.New(gc)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("driver", sc.Driver).Info("sql storage ready")
		return st, func() { _ = st.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unsupported storage driver %q", sc.Driver)
	}
}
