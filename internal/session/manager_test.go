package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/config"
	"github.com/kfalck/ghostfill-cli/internal/detect"
	"github.com/kfalck/ghostfill-cli/internal/fill"
	"github.com/kfalck/ghostfill-cli/internal/generate"
	"github.com/kfalck/ghostfill-cli/internal/history"
	"github.com/kfalck/ghostfill-cli/internal/settings"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	logger := zaptest.NewLogger(t)
	cfg := config.NewDefaultConfig()
	cfg.Browser.ProfileDir = dir

	historyStore, err := history.NewStore(filepath.Join(dir, "history.json"), logger)
	require.NoError(t, err)

	return &Manager{
		cfg:    cfg,
		logger: logger,
		deps: &dependencies{
			detector: detect.NewDetector(logger, detect.NewHeuristicStrategy()),
			pipeline: generate.NewPipeline(nil, time.Second, logger),
			filler:   fill.NewFiller(logger),
			history:  historyStore,
			settings: settings.NewStore(filepath.Join(dir, "settings.json"), cfg.AsSettings(), logger),
		},
	}
}

func TestStartBrowserSession_ClosesPreviousEvenOnFailure(t *testing.T) {
	m := newTestManager(t)

	prev := newSession("https://old.example.com", "https://old.example.com",
		schemas.ThemeGenericPersona, "", "", m.cfg, m.deps, m.logger)
	prev.ctx = context.Background()
	prevClosed := false
	prev.cancel = func() { prevClosed = true }
	m.current = prev

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.StartBrowserSession(ctx, "https://new.example.com/signup",
		schemas.ThemeStarWarsHero, "", "")
	require.Error(t, err)

	assert.True(t, prevClosed)
	assert.Nil(t, m.Current())
}

func TestStartBrowserSession_RejectsInvalidURL(t *testing.T) {
	m := newTestManager(t)
	err := m.StartBrowserSession(context.Background(), "not-a-url",
		schemas.ThemeStarWarsHero, "", "")
	require.Error(t, err)
}

func TestStopSession_NoActiveSession(t *testing.T) {
	m := newTestManager(t)
	m.StopSession()
	assert.Nil(t, m.Current())
}

func TestGetNavigationHistory(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.deps.history.Append("https://example.com", "https://example.com/a"))
	require.NoError(t, m.deps.history.Append("https://example.com", "https://example.com/b"))

	urls := m.GetNavigationHistory("https://example.com")
	assert.Equal(t, []string{"https://example.com/b", "https://example.com/a"}, urls)
}

func TestProfileDir_StablePerSite(t *testing.T) {
	m := newTestManager(t)

	a1, err := m.profileDir("https://example.com")
	require.NoError(t, err)
	a2, err := m.profileDir("https://example.com")
	require.NoError(t, err)
	b, err := m.profileDir("https://other.example.org")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}
