package session

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/config"
	"github.com/kfalck/ghostfill-cli/internal/detect"
	"github.com/kfalck/ghostfill-cli/internal/fill"
	"github.com/kfalck/ghostfill-cli/internal/generate"
	"github.com/kfalck/ghostfill-cli/internal/history"
	"github.com/kfalck/ghostfill-cli/internal/htmlopt"
	"github.com/kfalck/ghostfill-cli/internal/inject"
	"github.com/kfalck/ghostfill-cli/internal/llm"
	"github.com/kfalck/ghostfill-cli/internal/record"
	"github.com/kfalck/ghostfill-cli/internal/settings"
)

// dependencies bundles the collaborators a session needs. Built once by the
// manager, shared by every session it starts.
type dependencies struct {
	llmClient llm.Client
	detector  *detect.Detector
	pipeline  *generate.Pipeline
	filler    *fill.Filler
	history   *history.Store
	settings  *settings.Store
	records   *record.Client
}

// Manager owns the single active session. Starting a new session always
// closes the previous one first; there are never two live browser contexts.
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   *dependencies

	mu      sync.Mutex
	current *Session
}

// NewManager wires the engine together. A missing LLM API key is a
// configuration error and fails here, before any browser is launched.
func NewManager(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	logger = logger.Named("session")

	llmClient, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("LLM configuration invalid: %w", err)
	}

	var optimizer detect.HTMLOptimizer
	if cfg.Scraper.Optimization {
		optimizer = htmlopt.New(cfg.Scraper.MaxHTMLBytes, logger)
	}
	detector := detect.NewDetector(logger,
		detect.NewLLMStrategy(llmClient, optimizer),
		detect.NewHeuristicStrategy(),
	)

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	historyStore, err := history.NewStore(filepath.Join(dataDir, "history.json"), logger)
	if err != nil {
		return nil, err
	}
	settingsStore := settings.NewStore(filepath.Join(dataDir, "settings.json"), cfg.AsSettings(), logger)

	var records *record.Client
	if cfg.Persistence.Endpoint != "" {
		records = record.NewClient(cfg.Persistence.Endpoint, cfg.Persistence.Timeout, logger)
	}

	return &Manager{
		cfg:    cfg,
		logger: logger,
		deps: &dependencies{
			llmClient: llmClient,
			detector:  detector,
			pipeline:  generate.NewPipeline(llmClient, cfg.Filler.Timeout, logger),
			filler:    fill.NewFiller(logger),
			history:   historyStore,
			settings:  settingsStore,
			records:   records,
		},
	}, nil
}

// StartBrowserSession launches a browser, navigates to url, and installs
// the page bridge and floating button. Any previously active session is
// unconditionally closed first.
func (m *Manager) StartBrowserSession(ctx context.Context, url string, theme schemas.Theme, customPrompt, customGhostWriterPrompt string) error {
	baseURL, err := history.BaseURL(url)
	if err != nil {
		return err
	}

	fillerPrompt, ghostPrompt, err := m.deps.settings.EffectivePrompts(baseURL, customPrompt, customGhostWriterPrompt)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("Closing previous session before starting a new one",
			zap.String("previous_url", m.current.URL()))
		m.current.Close()
		m.current = nil
	}

	s := newSession(url, baseURL, theme, fillerPrompt, ghostPrompt, m.cfg, m.deps, m.logger)

	profileDir, err := m.profileDir(baseURL)
	if err != nil {
		return err
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		chromedp.UserDataDir(profileDir),
	)
	for _, arg := range m.cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	// The session outlives the caller's ctx; only Close tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	s.allocCancel = allocCancel
	s.ctx = browserCtx
	s.cancel = browserCancel

	if err := s.installBridge(ctx); err != nil {
		s.Close()
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.Browser.NavigationTimeout)
	defer cancel()
	runCtx, runCancel := CombineContext(browserCtx, navCtx)
	defer runCancel()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		s.Close()
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	// The persistent script covers future documents; arm the current one
	// explicitly (both scripts are idempotent).
	if err := s.Evaluate(navCtx, inject.CoreScript(), nil); err != nil {
		s.Close()
		return fmt.Errorf("failed to inject page utilities: %w", err)
	}
	if err := s.Evaluate(navCtx, inject.FloatingButtonScript(), nil); err != nil {
		s.Close()
		return fmt.Errorf("failed to inject floating button: %w", err)
	}

	if err := m.deps.history.Append(baseURL, url); err != nil {
		m.logger.Warn("Failed to record session start in history", zap.Error(err))
	}

	m.current = s
	m.logger.Info("Browser session started",
		zap.String("url", url),
		zap.String("theme", string(theme)),
		zap.String("session_id", s.ID()),
	)
	return nil
}

// StopSession closes the active session, if any.
func (m *Manager) StopSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// GetNavigationHistory returns the recorded URLs for a base URL, most
// recent first.
func (m *Manager) GetNavigationHistory(baseURL string) []string {
	return m.deps.history.Get(baseURL)
}

// Settings returns the settings store for external callers.
func (m *Manager) Settings() *settings.Store {
	return m.deps.settings
}

// profileDir resolves the persistent user-data directory for a site, keyed
// by a hash of the base URL so cookies and local storage survive restarts
// without profiles colliding across sites.
func (m *Manager) profileDir(baseURL string) (string, error) {
	root := m.cfg.Browser.ProfileDir
	if root == "" {
		dataDir, err := m.cfg.DataDir()
		if err != nil {
			return "", err
		}
		root = filepath.Join(dataDir, "profiles")
	}

	h := fnv.New64a()
	h.Write([]byte(baseURL))
	dir := filepath.Join(root, fmt.Sprintf("%x", h.Sum64()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create profile directory %s: %w", dir, err)
	}
	return dir, nil
}
