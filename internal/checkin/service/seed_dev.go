package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

// DevRegistration is a demo attendee inserted by SeedDev.
type DevRegistration struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
	Role  string `yaml:"role"`
}

var DefaultDevRegistrations = []DevRegistration{
	{Name: "Ana Pérez", Email: "ana@example.com", Phone: "+34 600 000 001", Role: "speaker"},
	{Name: "Bruno Díaz", Email: "bruno@example.com", Phone: "+34 600 000 002", Role: "attendee"},
	{Name: "Carla Anaya", Email: "carla@example.com", Phone: "+34 600 000 003", Role: "staff"},
	{Name: "Diego Romero", Email: "diego@example.com", Phone: "+34 600 000 004", Role: "attendee"},
}

// devNamespace keeps seeded ids stable so re-seeding is a no-op.
var devNamespace = uuid.MustParse("6f1c1a52-4a4e-4f0e-9d6a-2b1f0c7e5a10")

// DevRegistrationID returns the deterministic id SeedDev assigns to email.
func DevRegistrationID(email string) string {
	return uuid.NewSHA1(devNamespace, []byte(email)).String()
}

// SeedDev inserts the demo registrations that are missing and returns how
// many were created.
func SeedDev(ctx context.Context, st store.RegistrationStore, regs []DevRegistration) (int, error) {
	inserted := 0
	for _, r := range regs {
		id := DevRegistrationID(r.Email)
		_, err := st.GetRegistration(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return inserted, errors.Wrapf(err, "seed lookup %s", r.Email)
		}

		if err := st.CreateRegistration(ctx, types.Registration{
			ID:    id,
			Name:  r.Name,
			Email: r.Email,
			Phone: r.Phone,
			Role:  r.Role,
		}); err != nil {
			return inserted, errors.Wrapf(err, "seed registration %s", r.Email)
		}
		inserted++
	}
	return inserted, nil
}
