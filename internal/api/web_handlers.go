package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
	"github.com/reelmatch/reelmatch-server/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

var pageFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

func (s *Server) registerWebRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/recommend", s.handleRecommendForm)
}

// indexPageData contains data for the recommender page template.
type indexPageData struct {
	Titles          []string
	Selected        string // pre-selected option
	ListTitle       string // title the shown list was computed for
	Recommendations []domain.Recommendation
	Error           string
}

// handleIndex renders the page with the session's last list.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.services.Recommendations.Last(r.Context(), readSessionID(r))
	if err != nil {
		s.logger.Error("failed to load session", "error", err)
		s.renderIndex(w, http.StatusInternalServerError, indexPageData{Error: "Something went wrong. Please try again."})
		return
	}

	s.renderIndex(w, http.StatusOK, indexPageData{
		Selected:        sess.SelectedTitle,
		ListTitle:       sess.SelectedTitle,
		Recommendations: sess.Recommendations,
	})
}

// handleRecommendForm computes a list for the submitted title and redirects back to the page.
// Lookup failures render the page in place with the previous list and an error message.
// POST /recommend
func (s *Server) handleRecommendForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexPageData{Error: "The form could not be read."})
		return
	}
	title := r.PostFormValue("title")

	sessionID, _, err := sessionFor(readSessionID(r))
	if err != nil {
		s.logger.Error("failed to create session id", "error", err)
		s.renderIndex(w, http.StatusInternalServerError, indexPageData{Error: "Something went wrong. Please try again."})
		return
	}
	http.SetCookie(w, s.sessionCookie(sessionID))

	_, err = s.services.Recommendations.Recommend(r.Context(), sessionID, service.RecommendRequest{Title: title})
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status, message := http.StatusInternalServerError, "Something went wrong. Please try again."
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domainerrors.CodeNotFound, domainerrors.CodeValidation:
			status, message = domainErr.HTTPStatus(), domainErr.Message
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("recommendation failed", "error", err, "title", title)
	}

	data := indexPageData{Selected: title, Error: message}
	if prev, lerr := s.services.Recommendations.Last(r.Context(), sessionID); lerr == nil {
		data.ListTitle = prev.SelectedTitle
		data.Recommendations = prev.Recommendations
	}
	s.renderIndex(w, status, data)
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, data indexPageData) {
	data.Titles = s.services.Recommendations.Titles(false)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheNoStore)
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("failed to execute index template", "error", err)
	}
}
