package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reelmatch/reelmatch-server/internal/id"
	"github.com/reelmatch/reelmatch-server/internal/metrics"
)

// observe records request metrics and logs each request once it completes.
// Routes are labelled by chi pattern so path parameters do not explode cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		metrics.RecordHTTPRequest(r.Method, route, status, duration)
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// sessionFor returns raw when it is a well-formed session id, or a fresh id otherwise.
func sessionFor(raw string) (sessionID string, created bool, err error) {
	if id.IsSessionID(raw) {
		return raw, false, nil
	}
	sessionID, err = id.NewSessionID()
	return sessionID, true, err
}

// sessionCookie builds the cookie that carries sessionID. Every write refreshes its lifetime.
func (s *Server) sessionCookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// readSessionID returns the session id carried by r, or "" when absent or malformed.
func readSessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || !id.IsSessionID(c.Value) {
		return ""
	}
	return c.Value
}
