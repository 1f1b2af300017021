// Package api exposes the theme and submission services over HTTP and
// provides the matching client used by the editor.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/db"
	"github.com/ajramos/formsmith/internal/render"
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/services"
	"github.com/ajramos/formsmith/pkg/auth"
)

// RevisionHeader carries the revision of a saved theme
const RevisionHeader = "X-Theme-Revision"

// maxBodyBytes bounds request bodies; a theme with an embedded logo is the largest
const maxBodyBytes = 4 << 20

// Services bundles the backends the server delegates to
type Services struct {
	Owners      services.OwnerService
	Themes      services.ThemeService
	Submissions services.SubmissionService
}

// Server routes HTTP requests to the services
type Server struct {
	svc      Services
	tokensMu sync.RWMutex
	tokens   map[string]string
	validate *validator.Validate
	logger   zerolog.Logger
	mux      *http.ServeMux
}

// NewServer creates a server. tokens maps a bearer token to the owner email it
// authenticates.
func NewServer(svc Services, tokens map[string]string, logger zerolog.Logger) *Server {
	s := &Server{
		svc:      svc,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// SetTokens replaces the accepted tokens, e.g. after a configuration reload
func (s *Server) SetTokens(tokens map[string]string) {
	s.tokensMu.Lock()
	s.tokens = tokens
	s.tokensMu.Unlock()
}

func (s *Server) ownerFor(token string) (string, bool) {
	s.tokensMu.RLock()
	defer s.tokensMu.RUnlock()
	email, ok := s.tokens[token]
	return email, ok
}

func (s *Server) routes() {
	// owner endpoints
	s.mux.Handle("GET /api/theme", s.authenticated(s.handleGetTheme))
	s.mux.Handle("POST /api/theme", s.authenticated(s.handleSaveTheme))
	s.mux.Handle("GET /api/submissions", s.authenticated(s.handleListSubmissions))
	s.mux.Handle("GET /api/analytics", s.authenticated(s.handleAnalytics))

	// public widget endpoints
	s.mux.HandleFunc("GET /api/theme/{siteKey}", s.handlePublicTheme)
	s.mux.HandleFunc("POST "+render.SubmitPath, s.handleSubmit)
	s.mux.HandleFunc("GET /widget/{siteKey}", s.handleWidget)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	cors(rec, r)
	if r.Method == http.MethodOptions {
		rec.WriteHeader(http.StatusNoContent)
	} else {
		s.mux.ServeHTTP(rec, r)
	}
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("took", time.Since(start)).
		Msg("request")
}

type ownerHandler func(w http.ResponseWriter, r *http.Request, email string)

func (s *Server) authenticated(next ownerHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := s.ownerFor(auth.BearerToken(r))
		if !ok || email == "" {
			s.writeError(w, services.ErrUnauthorized)
			return
		}
		next(w, r, email)
	})
}

type themeResponse struct {
	Theme    any    `json:"theme"`
	Revision uint64 `json:"revision"`
	SiteKey  string `json:"siteKey,omitempty"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request, email string) {
	rec, err := s.svc.Themes.GetTheme(r.Context(), email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := themeResponse{Theme: struct{}{}, Revision: rec.Revision, SiteKey: rec.SiteKey}
	if rec.Found {
		resp.Theme = rec.Theme
	}
	w.Header().Set(RevisionHeader, strconv.FormatUint(rec.Revision, 10))
	writeJSON(w, http.StatusOK, resp)
}

type saveThemeRequest struct {
	Theme    json.RawMessage `json:"theme" validate:"required"`
	Revision *uint64         `json:"revision,omitempty"`
}

func (s *Server) handleSaveTheme(w http.ResponseWriter, r *http.Request, email string) {
	var req saveThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", services.ErrInvalidInput, err))
		return
	}

	theme, err := schema.Decode(req.Theme)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", services.ErrInvalidFormat, err))
		return
	}

	revision, versioned := uint64(0), false
	if req.Revision != nil {
		revision, versioned = *req.Revision, true
	}
	if h := r.Header.Get(RevisionHeader); h != "" {
		v, err := strconv.ParseUint(h, 10, 64)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: bad %s header", services.ErrInvalidInput, RevisionHeader))
			return
		}
		revision, versioned = v, true
	}

	// a save without a revision always lands, on top of the stored one
	applied := true
	if versioned {
		applied, err = s.svc.Themes.SaveTheme(r.Context(), email, revision, theme)
	} else {
		revision, err = s.svc.Themes.SaveThemeNext(r.Context(), email, theme)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"applied":  applied,
		"revision": revision,
	})
}

func (s *Server) handlePublicTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.svc.Themes.GetThemeBySiteKey(r.Context(), r.PathValue("siteKey"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": theme})
}

type submitRequest struct {
	SiteKey string         `validate:"required,max=64"`
	Values  map[string]any `validate:"max=100"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	values, err := submittedValues(w, r)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	siteKey, _ := values["siteKey"].(string)
	delete(values, "siteKey")

	req := submitRequest{SiteKey: strings.TrimSpace(siteKey), Values: values}
	if err := s.validate.Struct(req); err != nil {
		s.writeSubmitError(w, fmt.Errorf("%w: %v", services.ErrInvalidInput, err))
		return
	}

	sub, err := s.svc.Submissions.Submit(r.Context(), req.SiteKey, req.Values)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": sub.ID})
}

// submittedValues accepts a JSON object or a classic form post
func submittedValues(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", services.ErrInvalidFormat, err)
		}
		values := make(map[string]any, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) == 1 {
				values[k] = v[0]
			} else {
				values[k] = v
			}
		}
		return values, nil
	}

	values := map[string]any{}
	if err := decodeJSON(w, r, &values); err != nil {
		return nil, err
	}
	return values, nil
}

type submissionJSON struct {
	ID        string         `json:"id"`
	SiteKey   string         `json:"siteKey"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request, email string) {
	siteKey, err := s.ownedSiteKey(r, email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subs, err := s.svc.Submissions.List(r.Context(), siteKey, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]submissionJSON, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubmissionJSON(sub))
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func toSubmissionJSON(sub db.Submission) submissionJSON {
	return submissionJSON{ID: sub.ID, SiteKey: sub.SiteKey, Values: sub.Values, CreatedAt: sub.CreatedAt}
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, email string) {
	siteKey, err := s.ownedSiteKey(r, email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	stats, err := s.svc.Submissions.Analytics(r.Context(), siteKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ownedSiteKey returns the siteKey query parameter, defaulting to the owner's
// own key, and refuses a key that belongs to someone else
func (s *Server) ownedSiteKey(r *http.Request, email string) (string, error) {
	owner, err := s.svc.Owners.EnsureOwner(r.Context(), email)
	if err != nil {
		return "", err
	}
	siteKey := r.URL.Query().Get("siteKey")
	if siteKey == "" {
		return owner.SiteKey, nil
	}
	if siteKey != owner.SiteKey {
		return "", services.ErrForbidden
	}
	return siteKey, nil
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	siteKey := r.PathValue("siteKey")
	theme, err := s.svc.Themes.GetThemeBySiteKey(r.Context(), siteKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, theme, siteKey); err != nil {
		s.logger.Error().Err(err).Str("site_key", siteKey).Msg("widget render failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", services.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", services.ErrInvalidFormat, err)
	}
	return nil
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		s.logger.Error().Err(err).Msg("request failed")
		msg = http.StatusText(status)
	case services.IsPermanentError(err):
		s.logger.Debug().Err(err).Msg("request rejected")
	}
	if services.IsRetryableError(err) {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSubmitError keeps the {success, error} shape the widget expects
func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("submission failed")
		msg = "Submission failed"
	}
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cors lets the widget call the public endpoints from any page
func cors(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Origin") == "" {
		return
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+RevisionHeader)
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Expose-Headers", RevisionHeader)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
