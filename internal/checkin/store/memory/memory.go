package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

// Store keeps registrations and the checkin log in process memory.
// It is intended for use in tests and dev environments.
type Store struct {
	mu            sync.RWMutex
	registrations map[string]types.Registration
	checkins      []types.Checkin
}

func New() *Store {
	return &Store{
		registrations: make(map[string]types.Registration),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) GetRegistration(_ context.Context, id string) (types.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[id]
	if !ok {
		return types.Registration{}, store.ErrNotFound
	}
	return reg, nil
}

func (s *Store) SearchRegistrations(_ context.Context, search string) ([]types.AttendeeSummary, error) {
	needle := strings.ToLower(strings.TrimSpace(search))

	s.mu.RLock()
	out := make([]types.AttendeeSummary, 0, len(s.registrations))
	for _, r := range s.registrations {
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		out = append(out, types.AttendeeSummary{ID: r.ID, Name: r.Name, CheckedIn: r.CheckedIn})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateRegistration(_ context.Context, reg types.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registrations[reg.ID]; exists {
		return nil
	}
	s.registrations[reg.ID] = reg
	return nil
}

func (s *Store) SetCheckedIn(_ context.Context, id string, checkedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return store.ErrNotFound
	}
	reg.CheckedIn = checkedIn
	s.registrations[id] = reg
	return nil
}

func (s *Store) RecordCheckin(_ context.Context, rec types.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[rec.RegistrationID]
	if !ok {
		return store.ErrNotFound
	}
	s.checkins = append(s.checkins, rec)
	if rec.Subevent == types.SubeventMain {
		reg.CheckedIn = true
		s.registrations[reg.ID] = reg
	}
	return nil
}

func (s *Store) ListCheckins(_ context.Context, registrationID string) ([]types.Checkin, error) {
	s.mu.RLock()
	var out []types.Checkin
	// Walk newest-inserted first so equal timestamps keep insertion order reversed.
	for i := len(s.checkins) - 1; i >= 0; i-- {
		if c := s.checkins[i]; c.RegistrationID == registrationID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Checkins returns a copy of the whole log.  Test-only helper.
func (s *Store) Checkins() []types.Checkin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Checkin, len(s.checkins))
	copy(out, s.checkins)
	return out
}
