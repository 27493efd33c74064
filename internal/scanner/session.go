package scanner

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

type State int

const (
	Idle State = iota
	Starting
	Active
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ErrBusy is returned by Start when the session is not idle.
var ErrBusy = errors.New("scanner session already running")

// Options are passed to the source when it is started.
type Options struct {
	FacingMode string
	FPS        int
	QRBoxSize  int
}

// DefaultOptions asks for the rear camera with a 250px scan box.
var DefaultOptions = Options{FacingMode: "environment", FPS: 10, QRBoxSize: 250}

// Source is a device that yields decoded QR payloads. Start must return once
// the device is streaming; onDecode may be called from any goroutine until
// Stop returns. Stop must be safe to call on a source that never started.
type Source interface {
	Start(ctx context.Context, opts Options, onDecode func(payload string)) error
	Stop() error
}

// Handler receives the attendee id extracted from each decoded payload.
type Handler func(ctx context.Context, id string) error

type Config struct {
	Options Options
	// Continuous keeps the source running after the first decode.
	Continuous bool
}

// Session drives a Source through Idle, Starting, Active and Stopping.
// A Stop that arrives while the source is still starting is remembered and
// carried out as soon as the start completes.
type Session struct {
	src     Source
	cfg     Config
	handler Handler
	logger  logrus.FieldLogger

	mu            sync.Mutex
	state         State
	stopRequested bool
	handled       bool
	finished      chan struct{}
	finishOnce    *sync.Once
	ctx           context.Context
}

func NewSession(src Source, cfg Config, handler Handler, logger logrus.FieldLogger) *Session {
	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		src:     src,
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		state:   Idle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the source. If Stop was requested meanwhile, the source is
// released before Start returns.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = Starting
	s.stopRequested = false
	s.handled = false
	s.finished = make(chan struct{})
	s.finishOnce = &sync.Once{}
	s.ctx = ctx
	s.mu.Unlock()

	err := s.src.Start(ctx, s.cfg.Options, s.handleDecode)

	s.mu.Lock()
	if err != nil {
		s.state = Stopping
		s.mu.Unlock()
		_ = s.release()
		return errors.Wrap(err, "start scanner source")
	}
	if s.stopRequested {
		s.state = Stopping
		s.mu.Unlock()
		s.logger.Debug("stop requested during start")
		return s.release()
	}
	s.state = Active
	s.mu.Unlock()

	s.logger.WithField("facing_mode", s.cfg.Options.FacingMode).Info("scanner started")
	return nil
}

// Stop releases the source. It is a no-op when idle or already stopping.
func (s *Session) Stop() error {
	s.mu.Lock()
	switch s.state {
	case Starting:
		s.stopRequested = true
		s.mu.Unlock()
		return nil
	case Active:
		s.state = Stopping
		s.mu.Unlock()
		return s.release()
	default:
		s.mu.Unlock()
		return nil
	}
}

// Run starts the session and blocks until ctx is done, the source runs dry,
// or (when not continuous) the first payload has been handled. The source is
// stopped before Run returns.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	s.mu.Lock()
	finished := s.finished
	s.mu.Unlock()

	var exhausted <-chan struct{}
	if d, ok := s.src.(interface{ Done() <-chan struct{} }); ok {
		exhausted = d.Done()
	}

	select {
	case <-ctx.Done():
	case <-finished:
	case <-exhausted:
	}
	return nil
}

func (s *Session) release() error {
	err := s.src.Stop()

	s.mu.Lock()
	s.state = Idle
	s.stopRequested = false
	if s.finishOnce != nil {
		s.finishOnce.Do(func() { close(s.finished) })
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Warn("scanner source stop failed")
		return errors.Wrap(err, "stop scanner source")
	}
	s.logger.Info("scanner stopped")
	return nil
}

func (s *Session) handleDecode(payload string) {
	id := types.ExtractID(payload)
	if id == "" {
		return
	}

	s.mu.Lock()
	if s.state != Active && s.state != Starting {
		s.mu.Unlock()
		return
	}
	if !s.cfg.Continuous && s.handled {
		s.mu.Unlock()
		return
	}
	s.handled = true
	ctx := s.ctx
	finishOnce, finished := s.finishOnce, s.finished
	s.mu.Unlock()

	log := s.logger.WithField("id", id)
	if err := s.handler(ctx, id); err != nil {
		log.WithError(err).Warn("scan not recorded")
	} else {
		log.Info("scan recorded")
	}

	if !s.cfg.Continuous {
		finishOnce.Do(func() { close(finished) })
	}
}
