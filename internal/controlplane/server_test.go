package controlplane

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/session"
	"github.com/kfalck/ghostfill-cli/internal/settings"
)

type fakeManager struct {
	startErr   error
	started    []string
	stopped    int
	history    map[string][]string
	settings   *settings.Store
	lastTheme  schemas.Theme
	lastPrompt string
}

func (f *fakeManager) StartBrowserSession(_ context.Context, url string, theme schemas.Theme, customPrompt, _ string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, url)
	f.lastTheme = theme
	f.lastPrompt = customPrompt
	return nil
}

func (f *fakeManager) StopSession() { f.stopped++ }

func (f *fakeManager) Current() *session.Session { return nil }

func (f *fakeManager) GetNavigationHistory(baseURL string) []string { return f.history[baseURL] }

func (f *fakeManager) Settings() *settings.Store { return f.settings }

func newTestServer(t *testing.T, m *fakeManager) *Server {
	t.Helper()
	if m.settings == nil {
		m.settings = settings.NewStore(
			filepath.Join(t.TempDir(), "settings.json"),
			schemas.Settings{AIModel: schemas.AIModelSettings{Provider: "gemini"}},
			zaptest.NewLogger(t),
		)
	}
	return NewServer(m, zaptest.NewLogger(t))
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestStartSession_BadRequests(t *testing.T) {
	s := newTestServer(t, &fakeManager{})

	w := doRequest(s, http.MethodPost, "/api/session", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, http.MethodPost, "/api/session", `{"theme": "STAR_WARS_HERO"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "url is required")

	w = doRequest(s, http.MethodPost, "/api/session", `{"url": "https://a.com", "theme": "PIRATE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown theme")
}

func TestStartSession_ManagerFailure(t *testing.T) {
	s := newTestServer(t, &fakeManager{startErr: errors.New("browser launch failed")})

	w := doRequest(s, http.MethodPost, "/api/session", `{"url": "https://a.com", "theme": "SUPERHERO"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "browser launch failed")
}

func TestStartSession_DefaultsToGenericPersona(t *testing.T) {
	m := &fakeManager{}
	s := newTestServer(t, m)

	w := doRequest(s, http.MethodPost, "/api/session", `{"url": "https://a.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, m.started, 1)
	assert.Equal(t, schemas.ThemeGenericPersona, m.lastTheme)
}

func TestStopSession(t *testing.T) {
	m := &fakeManager{}
	s := newTestServer(t, m)

	w := doRequest(s, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, m.stopped)
}

func TestGetSession_NoneActive(t *testing.T) {
	s := newTestServer(t, &fakeManager{})
	w := doRequest(s, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	m := &fakeManager{history: map[string][]string{
		"https://example.com": {"https://example.com/b", "https://example.com/a"},
	}}
	s := newTestServer(t, m)

	w := doRequest(s, http.MethodGet, "/api/history?baseUrl=https%3A%2F%2Fexample.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/b")

	w = doRequest(s, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown site returns an empty list, not null.
	w = doRequest(s, http.MethodGet, "/api/history?baseUrl=https%3A%2F%2Funknown.org", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"urls":[]`)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t, &fakeManager{})

	w := doRequest(s, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gemini")

	w = doRequest(s, http.MethodPut, "/api/settings",
		`{"aiModel": {"provider": "openai", "model": "gpt-4o-mini"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openai")
}
