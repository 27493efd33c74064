package store

import (
	"context"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

type RegistrationStore interface {
	GetRegistration(ctx context.Context, id string) (types.Registration, error)
	// SearchRegistrations matches name case-insensitively and orders by name.
	// An empty search returns every registration.
	SearchRegistrations(ctx context.Context, search string) ([]types.AttendeeSummary, error)
	// CreateRegistration inserts reg unless a row with the same id exists.
	CreateRegistration(ctx context.Context, reg types.Registration) error
	SetCheckedIn(ctx context.Context, id string, checkedIn bool) error
}
