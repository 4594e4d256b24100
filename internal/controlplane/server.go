// Package controlplane exposes the session engine over a small HTTP API so
// external tooling can drive it without going through the CLI.
package controlplane

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/session"
	"github.com/kfalck/ghostfill-cli/internal/settings"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SessionManager is the slice of the session manager the API needs.
type SessionManager interface {
	StartBrowserSession(ctx context.Context, url string, theme schemas.Theme, customPrompt, customGhostWriterPrompt string) error
	StopSession()
	Current() *session.Session
	GetNavigationHistory(baseURL string) []string
	Settings() *settings.Store
}

// Server is a thin HTTP layer over the session manager. It decodes
// requests, delegates, and maps errors to status codes; all behavior
// lives in the manager and the stores.
type Server struct {
	manager SessionManager
	logger  *zap.Logger
	router  *mux.Router
}

// NewServer wires the API routes.
func NewServer(manager SessionManager, logger *zap.Logger) *Server {
	s := &Server{
		manager: manager,
		logger:  logger.Named("controlplane"),
		router:  mux.NewRouter(),
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", s.startSession).Methods(http.MethodPost)
	api.HandleFunc("/session", s.stopSession).Methods(http.MethodDelete)
	api.HandleFunc("/session", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/history", s.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.putSettings).Methods(http.MethodPut)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Control plane listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type startSessionRequest struct {
	URL               string `json:"url"`
	Theme             string `json:"theme"`
	CustomPrompt      string `json:"customPrompt,omitempty"`
	GhostWriterPrompt string `json:"ghostWriterPrompt,omitempty"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	BaseURL   string `json:"baseUrl"`
	Mode      string `json:"mode"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	theme := schemas.Theme(req.Theme)
	if req.Theme == "" {
		theme = schemas.ThemeGenericPersona
	} else if !theme.Valid() {
		s.respondError(w, http.StatusBadRequest, "unknown theme: "+req.Theme)
		return
	}

	if err := s.manager.StartBrowserSession(r.Context(), req.URL, theme, req.CustomPrompt, req.GhostWriterPrompt); err != nil {
		s.logger.Error("Failed to start session", zap.String("url", req.URL), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	sess := s.manager.Current()
	if sess == nil {
		s.respondJSON(w, http.StatusCreated, map[string]string{"message": "session started"})
		return
	}
	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID(),
		URL:       sess.URL(),
		BaseURL:   sess.BaseURL(),
		Mode:      sess.Mode().String(),
	})
}

func (s *Server) stopSession(w http.ResponseWriter, _ *http.Request) {
	s.manager.StopSession()
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "session stopped"})
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.manager.Current()
	if sess == nil {
		s.respondError(w, http.StatusNotFound, "no active session")
		return
	}
	s.respondJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID(),
		URL:       sess.URL(),
		BaseURL:   sess.BaseURL(),
		Mode:      sess.Mode().String(),
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	baseURL := r.URL.Query().Get("baseUrl")
	if baseURL == "" {
		s.respondError(w, http.StatusBadRequest, "baseUrl query parameter is required")
		return
	}
	urls := s.manager.GetNavigationHistory(baseURL)
	if urls == nil {
		urls = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"baseUrl": baseURL, "urls": urls})
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.manager.Settings().Load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings schemas.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.manager.Settings().Save(settings); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
