package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

//go:embed templates/*.html
var templateFS embed.FS

type views struct {
	list   *template.Template
	detail *template.Template
	scan   *template.Template
}

var viewFuncs = template.FuncMap{
	"label": func(s types.Subevent) string { return s.Label() },
	"listPath": func(s types.Subevent) string {
		if s == types.SubeventMain {
			return "/"
		}
		return "/events/" + url.PathEscape(string(s))
	},
	"detailPath": detailPath,
	"stamp": func(t time.Time) string { return t.Local().Format("02 Jan 2006 15:04:05") },
}

func detailPath(s types.Subevent, id string) string {
	return "/events/" + url.PathEscape(string(s)) + "/attendees/" + url.PathEscape(id)
}

func mustParseViews() *views {
	page := func(name string) *template.Template {
		return template.Must(template.New("layout.html").Funcs(viewFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return &views{
		list:   page("list.html"),
		detail: page("detail.html"),
		scan:   page("scan.html"),
	}
}

type listPageData struct {
	Subevent  types.Subevent
	Subevents []types.SubeventInfo
	Search    string
	Attendees []types.AttendeeSummary
	Error     string
}

type historyRow struct {
	Subevent types.Subevent
	Times    []time.Time
}

type detailPageData struct {
	Subevent  types.Subevent
	Subevents []types.SubeventInfo
	Attendee  types.Registration
	History   []historyRow
	Error     string
}

type scanPageData struct {
	Subevent  types.Subevent
	Subevents []types.SubeventInfo
}

// pageSubevent resolves the {subevent} path segment. The root page has none
// and shows main.
func pageSubevent(r *http.Request) (types.Subevent, bool) {
	raw := r.PathValue("subevent")
	if raw == "" {
		return types.SubeventMain, true
	}
	s := types.Subevent(raw)
	return s, s.Valid()
}

func (s *Server) handleListPage(w http.ResponseWriter, r *http.Request) {
	sub, ok := pageSubevent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	search := r.URL.Query().Get("search")
	data := listPageData{Subevent: sub, Subevents: types.SubeventInfos(), Search: search}

	list, err := s.attendees.Search(r.Context(), search)
	if err != nil {
		s.logger.WithError(err).Error("list page search failed")
		data.Error = err.Error()
	}
	data.Attendees = list
	s.render(w, s.views.list, http.StatusOK, data)
}

func (s *Server) handleDetailPage(w http.ResponseWriter, r *http.Request) {
	sub, ok := pageSubevent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := detailPageData{Subevent: sub, Subevents: types.SubeventInfos()}
	resp, err := s.attendees.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusNotFound {
			data.Error = "No encontrado."
		} else {
			data.Error = err.Error()
		}
		s.render(w, s.views.detail, status, data)
		return
	}

	data.Attendee = resp.Attendee
	for _, se := range types.Subevents {
		data.History = append(data.History, historyRow{Subevent: se, Times: resp.Checkins[se]})
	}
	s.render(w, s.views.detail, http.StatusOK, data)
}

// handleToggle checks the attendee into the page's sub-event, or checks them
// out when they are already checked in.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sub, ok := pageSubevent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")

	resp, err := s.attendees.Get(r.Context(), id)
	if err == nil {
		if resp.Attendee.CheckedIn {
			err = s.attendees.CheckOut(r.Context(), types.CheckoutRequest{ID: id})
		} else {
			err = s.attendees.CheckIn(r.Context(), types.CheckinRequest{ID: id, Subevent: string(sub)})
		}
	}
	if err != nil {
		status, _ := statusFor(err)
		s.render(w, s.views.detail, status, detailPageData{
			Subevent:  sub,
			Subevents: types.SubeventInfos(),
			Error:     "Error cambiando estado: " + err.Error(),
		})
		return
	}

	http.Redirect(w, r, detailPath(sub, id), http.StatusSeeOther)
}

func (s *Server) handleScanPage(w http.ResponseWriter, r *http.Request) {
	sub, ok := pageSubevent(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, s.views.scan, http.StatusOK, scanPageData{Subevent: sub, Subevents: types.SubeventInfos()})
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.WithError(err).Error("render page")
	}
}
