// Package session owns the browser session lifecycle: at most one live
// browser context, the host side of the page bridge, the interaction-mode
// state machine, and the detect→generate→fill cycle that ties the other
// packages together.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/config"
)

// Session is one live browser context and its interaction state. All fields
// behind mu are owned by the session; nothing is exposed as a global.
type Session struct {
	id      string
	url     string
	baseURL string
	theme   schemas.Theme

	fillerPrompt string
	ghostPrompt  string

	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	cfg    *config.Config
	logger *zap.Logger
	deps   *dependencies

	mu            sync.Mutex
	mode          schemas.InteractionMode
	bridgeReady   bool
	selected      *schemas.SelectedElement
	cycleRunning  bool
	detectedForms []schemas.DetectedForm
	closed        bool

	// Ghost-writer state: hints delivered but not yet accepted, and the
	// field that most recently requested one (latest focus wins).
	hintMu        sync.Mutex
	hints         map[string]hintEntry
	latestHintFor string

	// wg tracks in-flight cycle goroutines so Close can drain them.
	wg sync.WaitGroup

	// evalFn overrides page evaluation in tests; nil means chromedp.
	evalFn func(ctx context.Context, script string, out any) error
}

type hintEntry struct {
	value     string
	fieldType string
}

func newSession(url, baseURL string, theme schemas.Theme, fillerPrompt, ghostPrompt string, cfg *config.Config, deps *dependencies, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:           id,
		url:          url,
		baseURL:      baseURL,
		theme:        theme,
		fillerPrompt: fillerPrompt,
		ghostPrompt:  ghostPrompt,
		cfg:          cfg,
		deps:         deps,
		logger:       logger.With(zap.String("session_id", id)),
		mode:         schemas.ModeIdle,
		hints:        make(map[string]hintEntry),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// URL returns the session's entry URL.
func (s *Session) URL() string { return s.url }

// BaseURL returns the scheme+host grouping key of the entry URL.
func (s *Session) BaseURL() string { return s.baseURL }

// Mode returns the currently active interaction mode.
func (s *Session) Mode() schemas.InteractionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Close cancels the browser context and the allocator. Pending page-side
// operations tied to the context are implicitly aborted. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("Closing browser session")
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.wg.Wait()
}

// Evaluate runs a script in the page and unmarshals the result into out.
// It satisfies the fill executor contract.
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	if s.evalFn != nil {
		return s.evalFn(ctx, script, out)
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	if out == nil {
		return chromedp.Run(runCtx, chromedp.Evaluate(script, nil))
	}
	return chromedp.Run(runCtx, chromedp.Evaluate(script, out))
}

// evaluateDetached runs a script without a caller deadline, bounded only by
// the session context and a safety timeout. Used from listener goroutines.
func (s *Session) evaluateDetached(script string, out any) error {
	ctx, cancel := context.WithTimeout(Detach(s.ctx), 15*time.Second)
	defer cancel()
	return s.Evaluate(ctx, script, out)
}

// screenshot captures the viewport, best-effort. A nil return means the
// capture failed and was logged.
func (s *Session) screenshot(ctx context.Context) []byte {
	var buf []byte
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		s.logger.Debug("Screenshot capture failed", zap.Error(err))
		return nil
	}
	return buf
}

// currentLocation reads the page's URL and title.
func (s *Session) currentLocation(ctx context.Context) (pageURL, pageTitle string, err error) {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	err = chromedp.Run(runCtx,
		chromedp.Location(&pageURL),
		chromedp.Title(&pageTitle),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to read page location: %w", err)
	}
	return pageURL, pageTitle, nil
}
