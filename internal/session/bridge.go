package session

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/history"
	"github.com/kfalck/ghostfill-cli/internal/inject"
)

// installBridge exposes the page→host binding, registers the dispatch
// listener, and arms the persistent page scripts. Installed exactly once
// per browser context; re-invocation is a no-op.
func (s *Session) installBridge(ctx context.Context) error {
	s.mu.Lock()
	if s.bridgeReady {
		s.mu.Unlock()
		return nil
	}
	s.bridgeReady = true
	s.mu.Unlock()

	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		runtime.AddBinding(inject.BindingName),
		chromedp.ActionFunc(func(c context.Context) error {
			// Core utilities and the FAB survive navigations.
			script := inject.CoreScript() + "\n" + inject.FloatingButtonScript()
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(c)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to install page bridge: %w", err)
	}

	chromedp.ListenTarget(s.ctx, func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventBindingCalled:
			if e.Name == inject.BindingName {
				go s.dispatchBridgeCall([]byte(e.Payload))
			}
		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				go s.onNavigated(e.Frame.URL)
			}
		}
	})

	return nil
}

// dispatchBridgeCall routes one page command to its handler. Handlers run
// on listener goroutines; every failure is logged and surfaced as an
// in-page toast, never a crash.
func (s *Session) dispatchBridgeCall(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in bridge handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	env, err := inject.ParseEnvelope(payload)
	if err != nil {
		s.logger.Warn("Dropping malformed bridge call", zap.Error(err))
		return
	}
	s.logger.Debug("Bridge call received", zap.String("command", string(env.Command)))

	var handlerErr error
	switch env.Command {
	case inject.CommandToggleElementSelection:
		handlerErr = s.handleToggleElementSelection()
	case inject.CommandTogglePointerDetection:
		handlerErr = s.handleTogglePointerDetection()
	case inject.CommandToggleGhostWriter:
		handlerErr = s.handleToggleGhostWriter()
	case inject.CommandElementSelected:
		handlerErr = s.handleElementSelected(env)
	case inject.CommandGenerate:
		handlerErr = s.handleGenerate()
	case inject.CommandCancel:
		handlerErr = s.handleCancel()
	case inject.CommandDetectForm:
		handlerErr = s.handleDetectForm(env)
	case inject.CommandHintRequest:
		handlerErr = s.handleHintRequest(env)
	case inject.CommandFillInputByID:
		handlerErr = s.handleFillInputByID(env)
	default:
		s.logger.Warn("Unknown bridge command", zap.String("command", string(env.Command)))
		return
	}

	if handlerErr != nil {
		s.logger.Error("Bridge handler failed",
			zap.String("command", string(env.Command)), zap.Error(handlerErr))
		s.toast(handlerErr.Error(), "error")
	}
}

func (s *Session) handleToggleElementSelection() error {
	if s.Mode() == schemas.ModeElementSelection {
		return s.Deactivate()
	}
	return s.ActivateElementSelection()
}

func (s *Session) handleTogglePointerDetection() error {
	if s.Mode() == schemas.ModePointerDetection {
		return s.Deactivate()
	}
	return s.ActivatePointerDetection()
}

func (s *Session) handleToggleGhostWriter() error {
	if s.Mode() == schemas.ModeGhostWriter {
		return s.Deactivate()
	}
	return s.ActivateGhostWriter()
}

func (s *Session) handleElementSelected(env inject.Envelope) error {
	var selected schemas.SelectedElement
	if err := inject.DecodePayload(env, &selected); err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = &selected
	// The selection overlay tears itself down after a click.
	s.mode = schemas.ModeIdle
	s.mu.Unlock()

	s.logger.Info("Element selected", zap.String("selector", selected.Selector))
	s.toast("Element selected. Hit Generate to fill it.", "success")
	return nil
}

func (s *Session) handleGenerate() error {
	s.startFillCycle(-1)
	return nil
}

func (s *Session) handleCancel() error {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
	if err := s.evaluateDetached(inject.ClearSelectedElementScript, nil); err != nil {
		s.logger.Debug("Failed to clear page-side selection", zap.Error(err))
	}
	s.setBusy(false)
	return s.Deactivate()
}

func (s *Session) handleDetectForm(env inject.Envelope) error {
	var payload struct {
		FormIndex int `json:"formIndex"`
	}
	if err := inject.DecodePayload(env, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = schemas.ModeIdle // badge click tears the overlay down page-side
	s.mu.Unlock()

	s.startFillCycle(payload.FormIndex)
	return nil
}

// toast shows a transient in-page notification, best-effort.
func (s *Session) toast(message, kind string) {
	script, err := inject.ToastScript(message, kind)
	if err != nil {
		return
	}
	if err := s.evaluateDetached(script, nil); err != nil {
		s.logger.Debug("Toast delivery failed", zap.Error(err))
	}
}

func (s *Session) setBusy(busy bool) {
	if err := s.evaluateDetached(inject.SetBusyScript(busy), nil); err != nil {
		s.logger.Debug("Busy-state update failed", zap.Error(err))
	}
}

// onNavigated handles a same-base-URL main-frame navigation: record it in
// history and re-arm the page UI. Navigations leaving the session's site
// are ignored so its history bucket only ever holds its own URLs.
// In-flight work is left alone.
func (s *Session) onNavigated(newURL string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic in navigation handler", zap.Any("panic", r))
		}
	}()

	newBase, err := history.BaseURL(newURL)
	if err != nil || newBase != s.baseURL {
		s.logger.Debug("Ignoring navigation outside session base URL",
			zap.String("url", newURL))
		return
	}

	s.logger.Info("Page navigated", zap.String("url", newURL))

	// Pointer-detection badges described the previous document.
	s.mu.Lock()
	s.detectedForms = nil
	s.mu.Unlock()

	if s.deps.history != nil {
		if err := s.deps.history.Append(s.baseURL, newURL); err != nil {
			s.logger.Warn("Failed to record navigation", zap.Error(err))
		}
	}

	// Persistent scripts cover new documents, but evaluate again in case
	// the navigation was same-document.
	if err := s.evaluateDetached(inject.CoreScript(), nil); err != nil {
		s.logger.Debug("Core re-injection failed", zap.Error(err))
		return
	}
	if err := s.evaluateDetached(inject.FloatingButtonScript(), nil); err != nil {
		s.logger.Debug("FAB re-injection failed", zap.Error(err))
	}
}
