package store

import (
	"context"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

// CheckinStore persists the attendance log. The log is append-only.
type CheckinStore interface {
	// RecordCheckin appends rec and, when rec.Subevent is main, sets the
	// registration's checked_in flag, both in one transaction. Returns
	// ErrNotFound when the registration does not exist.
	RecordCheckin(ctx context.Context, rec types.Checkin) error
	// ListCheckins returns every entry for a registration, newest first.
	ListCheckins(ctx context.Context, registrationID string) ([]types.Checkin, error)
}
