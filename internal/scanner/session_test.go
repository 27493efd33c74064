package scanner_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/Checkin/server/internal/scanner"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeSource blocks in Start until release is closed.
type fakeSource struct {
	release  chan struct{}
	startErr error

	mu       sync.Mutex
	started  int
	stopped  int
	onDecode func(string)
	opts     scanner.Options
}

func newFakeSource() *fakeSource {
	r := make(chan struct{})
	close(r)
	return &fakeSource{release: r}
}

func (f *fakeSource) Start(_ context.Context, opts scanner.Options, onDecode func(string)) error {
	<-f.release
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	f.opts = opts
	f.onDecode = onDecode
	return f.startErr
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeSource) emit(payload string) {
	f.mu.Lock()
	fn := f.onDecode
	f.mu.Unlock()
	fn(payload)
}

func (f *fakeSource) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped
}

func TestSession_StartStop(t *testing.T) {
	src := newFakeSource()
	s := scanner.NewSession(src, scanner.Config{}, func(context.Context, string) error { return nil }, silentLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != scanner.Active {
		t.Fatalf("expected active, got %s", s.State())
	}
	if src.opts != scanner.DefaultOptions {
		t.Errorf("expected default options, got %+v", src.opts)
	}
	if err := s.Start(context.Background()); !errors.Is(err, scanner.ErrBusy) {
		t.Errorf("expected ErrBusy on second start, got %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.State() != scanner.Idle {
		t.Fatalf("expected idle, got %s", s.State())
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if _, stopped := src.counts(); stopped != 1 {
		t.Errorf("expected source stopped once, got %d", stopped)
	}
}

func TestSession_StopDuringStartIsDeferred(t *testing.T) {
	src := newFakeSource()
	src.release = make(chan struct{})
	s := scanner.NewSession(src, scanner.Config{}, func(context.Context, string) error { return nil }, silentLogger())

	startErr := make(chan error, 1)
	go func() { startErr <- s.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.State() != scanner.Starting {
		if time.Now().After(deadline) {
			t.Fatal("session never entered starting")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, stopped := src.counts(); stopped != 0 {
		t.Fatal("source must not be stopped before start completes")
	}

	close(src.release)
	if err := <-startErr; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != scanner.Idle {
		t.Errorf("expected idle after deferred stop, got %s", s.State())
	}
	if started, stopped := src.counts(); started != 1 || stopped != 1 {
		t.Errorf("expected 1 start and 1 stop, got %d/%d", started, stopped)
	}
}

func TestSession_StartFailureReleasesSource(t *testing.T) {
	src := newFakeSource()
	src.startErr = errors.New("permission denied")
	s := scanner.NewSession(src, scanner.Config{}, func(context.Context, string) error { return nil }, silentLogger())

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if s.State() != scanner.Idle {
		t.Errorf("expected idle, got %s", s.State())
	}
	if _, stopped := src.counts(); stopped != 1 {
		t.Errorf("expected source released, got %d stops", stopped)
	}
}

func TestSession_RunSingleShot(t *testing.T) {
	src := newFakeSource()
	var (
		mu  sync.Mutex
		ids []string
	)
	s := scanner.NewSession(src, scanner.Config{}, func(_ context.Context, id string) error {
		mu.Lock()
		ids = append(ids, id)
		mu.Unlock()
		return nil
	}, silentLogger())

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	for s.State() != scanner.Active {
		time.Sleep(time.Millisecond)
	}
	src.emit("https://checkin.example.com/attendees/abc-123")
	src.emit("https://checkin.example.com/attendees/def-456")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after first decode")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ids) != 1 || ids[0] != "abc-123" {
		t.Errorf("expected only abc-123, got %v", ids)
	}
	if s.State() != scanner.Idle {
		t.Errorf("expected idle, got %s", s.State())
	}
}

func TestSession_RunContinuousUntilCancel(t *testing.T) {
	src := newFakeSource()
	var (
		mu  sync.Mutex
		ids []string
	)
	s := scanner.NewSession(src, scanner.Config{Continuous: true}, func(_ context.Context, id string) error {
		mu.Lock()
		ids = append(ids, id)
		mu.Unlock()
		return errors.New("ignored")
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for s.State() != scanner.Active {
		time.Sleep(time.Millisecond)
	}
	src.emit("A1")
	src.emit("x/A2")
	src.emit("")
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(ids, ",") != "A1,A2" {
		t.Errorf("unexpected ids %v", ids)
	}
	if _, stopped := src.counts(); stopped != 1 {
		t.Errorf("expected source stopped once, got %d", stopped)
	}
}
