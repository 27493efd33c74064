package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/memory"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	for _, r := range []types.Registration{
		{ID: "r2", Name: "Bruno Díaz"},
		{ID: "r1", Name: "Ana Pérez"},
		{ID: "r3", Name: "Carla Anaya"},
	} {
		if err := s.CreateRegistration(ctx, r); err != nil {
			t.Fatalf("CreateRegistration: %v", err)
		}
	}
	return s
}

func TestSearchRegistrations_OrderedByName(t *testing.T) {
	s := seeded(t)
	got, err := s.SearchRegistrations(context.Background(), "")
	if err != nil {
		t.Fatalf("SearchRegistrations: %v", err)
	}
	if len(got) != 3 || got[0].Name != "Ana Pérez" || got[2].Name != "Carla Anaya" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestSearchRegistrations_CaseInsensitiveSubstring(t *testing.T) {
	s := seeded(t)
	got, err := s.SearchRegistrations(context.Background(), "ANA")
	if err != nil {
		t.Fatalf("SearchRegistrations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
}

func TestRecordCheckin_UnknownRegistration(t *testing.T) {
	s := memory.New()
	err := s.RecordCheckin(context.Background(), types.Checkin{RegistrationID: "nope", Subevent: types.SubeventMain})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(s.Checkins()) != 0 {
		t.Error("expected no log entry for unknown registration")
	}
}

func TestRecordCheckin_MainSetsFlag(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	if err := s.RecordCheckin(ctx, types.Checkin{RegistrationID: "r1", Subevent: types.SubeventNetworking, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}
	reg, _ := s.GetRegistration(ctx, "r1")
	if reg.CheckedIn {
		t.Error("non-main checkin must not set checked_in")
	}
	if err := s.RecordCheckin(ctx, types.Checkin{RegistrationID: "r1", Subevent: types.SubeventMain, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("RecordCheckin: %v", err)
	}
	reg, _ = s.GetRegistration(ctx, "r1")
	if !reg.CheckedIn {
		t.Error("main checkin must set checked_in")
	}
}

func TestSetCheckedIn_UnknownRegistration(t *testing.T) {
	s := memory.New()
	if err := s.SetCheckedIn(context.Background(), "nope", false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCheckins_TiesNewestInsertFirst(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"c1", "c2", "c3"} {
		if err := s.RecordCheckin(ctx, types.Checkin{ID: id, RegistrationID: "r1", Subevent: types.SubeventDemoX, CreatedAt: at}); err != nil {
			t.Fatalf("RecordCheckin %s: %v", id, err)
		}
	}
	_ = s.RecordCheckin(ctx, types.Checkin{ID: "c0", RegistrationID: "r1", Subevent: types.SubeventMain, CreatedAt: at.Add(-time.Minute)})

	log, err := s.ListCheckins(ctx, "r1")
	if err != nil {
		t.Fatalf("ListCheckins: %v", err)
	}
	var got []string
	for _, c := range log {
		got = append(got, c.ID)
	}
	want := []string{"c3", "c2", "c1", "c0"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
