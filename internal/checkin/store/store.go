package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when an id does not resolve to a registration.
var ErrNotFound = errors.New("registration not found")

// Store is the full backing store used by the service layer.
type Store interface {
	RegistrationStore
	CheckinStore
	Ping(ctx context.Context) error
}
