package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

type Dependencies struct {
	Logger    logrus.FieldLogger
	Addr      string
	Attendees *service.AttendeeService
}

type Server struct {
	httpServer *http.Server
	logger     logrus.FieldLogger
	mux        *http.ServeMux
	attendees  *service.AttendeeService
	views      *views
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		attendees: d.Attendees,
		views:     mustParseViews(),
	}

	mux.HandleFunc("GET /attendees", s.handleSearch)
	mux.HandleFunc("GET /attendees/{id}", s.handleGetAttendee)
	mux.HandleFunc("GET /attendees/{id}/qr.png", s.handleQRCode)
	mux.HandleFunc("POST /checkin", s.handleCheckin)
	mux.HandleFunc("POST /checkout", s.handleCheckout)
	mux.HandleFunc("GET /subevents", s.handleSubevents)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /{$}", s.handleListPage)
	mux.HandleFunc("GET /events/{subevent}", s.handleListPage)
	mux.HandleFunc("GET /events/{subevent}/attendees/{id}", s.handleDetailPage)
	mux.HandleFunc("POST /events/{subevent}/attendees/{id}/toggle", s.handleToggle)
	mux.HandleFunc("GET /scan/{subevent}", s.handleScanPage)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := s.attendees.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeServiceError(w, r, "search", err)
		return
	}
	respond(w, r, http.StatusOK, types.SearchResponse{Attendees: list})
}

func (s *Server) handleGetAttendee(w http.ResponseWriter, r *http.Request) {
	resp, err := s.attendees.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, "get attendee", err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req types.CheckinRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := s.attendees.CheckIn(r.Context(), req); err != nil {
		s.writeServiceError(w, r, "checkin", err)
		return
	}
	respond(w, r, http.StatusOK, types.SuccessResponse{Success: true})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req types.CheckoutRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := s.attendees.CheckOut(r.Context(), req); err != nil {
		s.writeServiceError(w, r, "checkout", err)
		return
	}
	respond(w, r, http.StatusOK, types.SuccessResponse{Success: true})
}

func (s *Server) handleSubevents(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, types.SubeventInfos())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.attendees.Ping(r.Context()); err != nil {
		s.logger.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("op", op).Error("store failure")
	}
	writeError(w, status, code, err.Error())
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
