package service

import (
	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
)

var (
	ErrInvalidID       = errors.New("id is required")
	ErrInvalidSubevent = errors.New("unknown subevent")

	// ErrNotFound is store.ErrNotFound, re-exported for callers of the service.
	ErrNotFound = store.ErrNotFound
)

// ServiceError wraps an unexpected failure of the backing store. The
// operation can be retried.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidSubevent)
}

// IsServiceError reports whether err is a store failure.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// classify maps a store error onto the service taxonomy.
func classify(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return errors.Wrapf(store.ErrNotFound, "%s %q", op, id)
	}
	return &ServiceError{Op: op, Err: err}
}
