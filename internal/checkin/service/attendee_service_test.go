package service_test

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store/memory"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "chk-" + strconv.Itoa(n)
	}
}

// newTestService builds an AttendeeService over an in-memory store seeded
// with registration A1.
func newTestService(t *testing.T) (*service.AttendeeService, *memory.Store) {
	t.Helper()
	st := memory.New()
	if err := st.CreateRegistration(context.Background(), types.Registration{ID: "A1", Name: "Ana Pérez"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := service.NewAttendeeService(st, service.Options{
		PublicURL: "https://checkin.example.com/",
		Logger:    silentLogger(),
		Now:       tickingClock(),
		NewID:     sequentialIDs(),
	})
	return svc, st
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestGet_UnknownID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "nobody")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_EmptyID_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "  ")
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGet_IncludesHistoryAndQRLink(t *testing.T) {
	svc, _ := newTestService(t)
	resp, err := svc.Get(context.Background(), "A1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Attendee.QRCodeURL != "https://checkin.example.com/attendees/A1/qr.png" {
		t.Errorf("unexpected qr url %q", resp.Attendee.QRCodeURL)
	}
	if len(resp.Checkins) != len(types.Subevents) {
		t.Errorf("expected all buckets, got %v", resp.Checkins)
	}
}

func TestAttendeeURL_RoundTripsThroughExtractID(t *testing.T) {
	svc, _ := newTestService(t)
	if got := types.ExtractID(svc.AttendeeURL("abc-123")); got != "abc-123" {
		t.Errorf("ExtractID(AttendeeURL) = %q", got)
	}
}

// ── CheckIn ──────────────────────────────────────────────────────────────────

func TestCheckIn_Main_SetsFlagAndAppends(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before, _ := svc.History(ctx, "A1")
	if err := svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "main"}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	resp, err := svc.Get(ctx, "A1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.Attendee.CheckedIn {
		t.Error("expected checked_in=true after main checkin")
	}
	if got := resp.Checkins.Count(types.SubeventMain); got != before.Count(types.SubeventMain)+1 {
		t.Errorf("expected main bucket to grow by 1, got %d", got)
	}
}

func TestCheckIn_DefaultsToMain(t *testing.T) {
	svc, st := newTestService(t)
	if err := svc.CheckIn(context.Background(), types.CheckinRequest{ID: "A1"}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	log := st.Checkins()
	if len(log) != 1 || log[0].Subevent != types.SubeventMain {
		t.Fatalf("expected one main entry, got %+v", log)
	}
}

func TestCheckIn_Subevent_LeavesFlagUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "charla-a"}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	resp, _ := svc.Get(ctx, "A1")
	if resp.Attendee.CheckedIn {
		t.Error("charla-a checkin must not change checked_in")
	}
	if resp.Checkins.Count(types.SubeventCharlaA) != 1 {
		t.Errorf("expected charla-a bucket length 1, got %d", resp.Checkins.Count(types.SubeventCharlaA))
	}
}

func TestCheckIn_DemoXTwice_TwoDistinctEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "demo-x"}); err != nil {
			t.Fatalf("CheckIn %d: %v", i, err)
		}
		resp, _ := svc.Get(ctx, "A1")
		if resp.Attendee.CheckedIn {
			t.Fatal("demo-x checkin must leave checked_in false")
		}
	}

	h, err := svc.History(ctx, "A1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	demo := h[types.SubeventDemoX]
	if len(demo) != 2 {
		t.Fatalf("expected 2 demo-x entries, got %d", len(demo))
	}
	if demo[0].Equal(demo[1]) {
		t.Error("expected two distinct timestamps")
	}
}

func TestCheckIn_UnknownAttendee_NotFound(t *testing.T) {
	svc, st := newTestService(t)
	err := svc.CheckIn(context.Background(), types.CheckinRequest{ID: "ghost", Subevent: "main"})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(st.Checkins()) != 0 {
		t.Error("expected no log entry")
	}
}

func TestCheckIn_Validation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if err := svc.CheckIn(ctx, types.CheckinRequest{Subevent: "main"}); !errors.Is(err, service.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if err := svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "keynote"}); !errors.Is(err, service.ErrInvalidSubevent) {
		t.Errorf("expected ErrInvalidSubevent, got %v", err)
	}
	if len(st.Checkins()) != 0 {
		t.Error("expected no log entry for validation failures")
	}
}

// ── CheckOut ─────────────────────────────────────────────────────────────────

func TestCheckOut_ClearsFlagKeepsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_ = svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "main"})
	_ = svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "taller-b"})
	before, _ := svc.History(ctx, "A1")

	if err := svc.CheckOut(ctx, types.CheckoutRequest{ID: "A1"}); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	resp, _ := svc.Get(ctx, "A1")
	if resp.Attendee.CheckedIn {
		t.Error("expected checked_in=false after checkout")
	}
	for _, s := range types.Subevents {
		if resp.Checkins.Count(s) != before.Count(s) {
			t.Errorf("bucket %s changed from %d to %d", s, before.Count(s), resp.Checkins.Count(s))
		}
	}
}

func TestCheckOut_UnknownAttendee_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.CheckOut(context.Background(), types.CheckoutRequest{ID: "ghost"}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ── History / Search ─────────────────────────────────────────────────────────

func TestHistory_Repeatable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_ = svc.CheckIn(ctx, types.CheckinRequest{ID: "A1", Subevent: "networking"})

	first, err := svc.History(ctx, "A1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	second, _ := svc.History(ctx, "A1")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("history differs between calls: %v vs %v", first, second)
	}
}

func TestSearch_EmptyStore_EmptyList(t *testing.T) {
	svc := service.NewAttendeeService(memory.New(), service.Options{Logger: silentLogger()})
	got, err := svc.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
}

// ── Store failures ───────────────────────────────────────────────────────────

type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) RecordCheckin(context.Context, types.Checkin) error { return f.err }
func (f failingStore) SetCheckedIn(context.Context, string, bool) error  { return f.err }

func TestStoreFailure_IsServiceError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := service.NewAttendeeService(failingStore{Store: memory.New(), err: boom}, service.Options{Logger: silentLogger()})
	ctx := context.Background()

	err := svc.CheckIn(ctx, types.CheckinRequest{ID: "A1"})
	if !service.IsServiceError(err) || !errors.Is(err, boom) {
		t.Errorf("expected ServiceError wrapping boom, got %v", err)
	}
	err = svc.CheckOut(ctx, types.CheckoutRequest{ID: "A1"})
	if !service.IsServiceError(err) {
		t.Errorf("expected ServiceError, got %v", err)
	}
}

// ── Exists ───────────────────────────────────────────────────────────────────

type countingStore struct {
	*memory.Store
	listCalls int
}

func (c *countingStore) ListCheckins(ctx context.Context, id string) ([]types.Checkin, error) {
	c.listCalls++
	return c.Store.ListCheckins(ctx, id)
}

func TestExists_SkipsCheckinLog(t *testing.T) {
	st := &countingStore{Store: memory.New()}
	_ = st.CreateRegistration(context.Background(), types.Registration{ID: "A1", Name: "Ana"})
	svc := service.NewAttendeeService(st, service.Options{Logger: silentLogger()})
	ctx := context.Background()

	if err := svc.Exists(ctx, "A1"); err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if err := svc.Exists(ctx, "ghost"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Exists(ctx, " "); !service.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if st.listCalls != 0 {
		t.Errorf("expected no log reads, got %d", st.listCalls)
	}
}
