package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

type Options struct {
	// PublicURL is the externally reachable base URL, used for the links
	// encoded in attendee QR codes. Empty yields relative links.
	PublicURL string
	Logger    logrus.FieldLogger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// AttendeeService implements attendee lookup and the check-in/check-out
// commands. It holds no mutable state; everything lives in the store.
type AttendeeService struct {
	store     store.Store
	publicURL string
	logger    logrus.FieldLogger
	now       func() time.Time
	newID     func() string
}

func NewAttendeeService(st store.Store, opts Options) *AttendeeService {
	s := &AttendeeService{
		store:     st,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

func (s *AttendeeService) Ping(ctx context.Context) error {
	return classify("ping", "", s.store.Ping(ctx))
}

// Get returns the registration together with its grouped history.
func (s *AttendeeService) Get(ctx context.Context, id string) (types.AttendeeResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.AttendeeResponse{}, ErrInvalidID
	}

	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return types.AttendeeResponse{}, classify("get attendee", id, err)
	}
	reg.QRCodeURL = s.QRCodeURL(id)

	log, err := s.store.ListCheckins(ctx, id)
	if err != nil {
		return types.AttendeeResponse{}, classify("list checkins", id, err)
	}

	return types.AttendeeResponse{
		Attendee: reg,
		Checkins: types.GroupCheckins(log),
	}, nil
}

// Exists reports NotFound when id has no registration. It does not load the
// check-in log.
func (s *AttendeeService) Exists(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidID
	}
	_, err := s.store.GetRegistration(ctx, id)
	return classify("get attendee", id, err)
}

func (s *AttendeeService) Search(ctx context.Context, text string) ([]types.AttendeeSummary, error) {
	out, err := s.store.SearchRegistrations(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, classify("search attendees", "", err)
	}
	if out == nil {
		out = []types.AttendeeSummary{}
	}
	return out, nil
}

// History returns the attendee's check-ins grouped by sub-event.
func (s *AttendeeService) History(ctx context.Context, id string) (types.History, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return resp.Checkins, nil
}

// CheckIn appends a log entry for the sub-event (main when omitted) and,
// for main, marks the registration as checked in. Every call appends.
func (s *AttendeeService) CheckIn(ctx context.Context, req types.CheckinRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return ErrInvalidID
	}
	sub, ok := types.ParseSubevent(req.Subevent)
	if !ok {
		return ErrInvalidSubevent
	}

	rec := types.Checkin{
		ID:             s.newID(),
		RegistrationID: id,
		Subevent:       sub,
		CreatedAt:      s.now(),
	}
	if err := s.store.RecordCheckin(ctx, rec); err != nil {
		return classify("checkin", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"registration_id": id,
		"subevent":        sub,
	}).Info("checkin recorded")
	return nil
}

// CheckOut clears the main checked_in flag. The log is left untouched.
func (s *AttendeeService) CheckOut(ctx context.Context, req types.CheckoutRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return ErrInvalidID
	}
	if err := s.store.SetCheckedIn(ctx, id, false); err != nil {
		return classify("checkout", id, err)
	}

	s.logger.WithField("registration_id", id).Info("checkout recorded")
	return nil
}

// AttendeeURL is the link encoded in an attendee's QR code. ExtractID on it
// yields id back.
func (s *AttendeeService) AttendeeURL(id string) string {
	return s.publicURL + "/attendees/" + url.PathEscape(id)
}

func (s *AttendeeService) QRCodeURL(id string) string {
	return s.AttendeeURL(id) + "/qr.png"
}
