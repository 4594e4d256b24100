package session

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/detect"
	"github.com/kfalck/ghostfill-cli/internal/inject"
)

// startFillCycle launches one extract-and-fill cycle in the background.
// formIndex < 0 means: use the stored element selection when present,
// otherwise the primary form. Only one cycle runs at a time; overlapping
// requests are dropped with a toast.
func (s *Session) startFillCycle(formIndex int) {
	s.mu.Lock()
	if s.cycleRunning {
		s.mu.Unlock()
		s.toast("A fill cycle is already running", "info")
		return
	}
	s.cycleRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic in fill cycle",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())))
			}
			s.mu.Lock()
			s.cycleRunning = false
			s.mu.Unlock()
			// The FAB always returns to its idle state, even on failure.
			s.setBusy(false)
		}()

		if err := s.runFillCycle(formIndex); err != nil {
			s.logger.Error("Fill cycle failed", zap.Error(err))
			s.toast(err.Error(), "error")
		}
	}()
}

func (s *Session) runFillCycle(formIndex int) error {
	ctx, cancel := context.WithTimeout(Detach(s.ctx), 3*time.Minute)
	defer cancel()

	s.setBusy(true)

	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	screenshotBefore := s.screenshot(ctx)

	form, ok := s.storedForm(formIndex)
	if !ok {
		var err error
		form, err = s.detectForm(ctx, formIndex, selected)
		if err != nil {
			return err
		}
	}

	values, err := s.deps.pipeline.Generate(ctx, form.Fields, s.theme, s.fillerPrompt)
	if err != nil {
		return fmt.Errorf("data generation failed: %w", err)
	}

	results := make([]schemas.GeneratedField, len(form.Fields))
	for i, f := range form.Fields {
		results[i] = schemas.GeneratedField{
			Label:  f.Label,
			Type:   f.Type,
			Value:  values.Values[f.Selector],
			Status: schemas.StatusTodo,
		}
	}

	onProgress := func(index int, status schemas.FieldStatus, errMsg string) {
		if !results[index].Status.CanTransition(status) {
			s.logger.Warn("Dropping invalid field status transition",
				zap.Int("field", index),
				zap.String("from", string(results[index].Status)),
				zap.String("to", string(status)))
			return
		}
		results[index].Status = status
		if script, err := inject.ProgressScript(index, status, errMsg); err == nil {
			if err := s.evaluateDetached(script, nil); err != nil {
				s.logger.Debug("Progress delivery failed", zap.Error(err))
			}
		}
	}

	if err := s.deps.filler.Fill(ctx, s, form.Fields, values.Values, onProgress); err != nil {
		return fmt.Errorf("fill pass aborted: %w", err)
	}

	screenshotAfter := s.screenshot(ctx)

	// The selection is consumed by a successful cycle.
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()

	s.persistGeneration(ctx, schemas.Generation{
		ID:                  uuid.New().String(),
		URL:                 s.url,
		CreatedAt:           time.Now().UTC(),
		ScreenshotBefore:    screenshotBefore,
		ScreenshotAfter:     screenshotAfter,
		ResourceDescription: values.ResourceDescription,
		Fields:              results,
	})

	s.toast("Form filled", "success")
	return nil
}

// storedForm resolves a badge click against the forms the pointer overlay
// was rendered for. Re-detection could disagree with what the user saw, so
// the stored list is authoritative while it exists; it is cleared on
// navigation.
func (s *Session) storedForm(formIndex int) (schemas.DetectedForm, bool) {
	if formIndex < 0 {
		return schemas.DetectedForm{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.detectedForms {
		if f.FormIndex == formIndex {
			return f, true
		}
	}
	return schemas.DetectedForm{}, false
}

// detectForm tags the page, snapshots its HTML, and runs the strategy list.
func (s *Session) detectForm(ctx context.Context, formIndex int, selected *schemas.SelectedElement) (schemas.DetectedForm, error) {
	subtree := ""
	if selected != nil {
		subtree = selected.Selector
	}

	tagScript, err := inject.TagTestIDsScript(subtree)
	if err != nil {
		return schemas.DetectedForm{}, err
	}
	var tagged int
	if err := s.Evaluate(ctx, tagScript, &tagged); err != nil {
		s.logger.Debug("Test-id tagging failed", zap.Error(err))
	}

	var pageHTML string
	if err := s.Evaluate(ctx, inject.PageHTMLScript, &pageHTML); err != nil {
		return schemas.DetectedForm{}, fmt.Errorf("failed to snapshot page HTML: %w", err)
	}

	pageURL, pageTitle, err := s.currentLocation(ctx)
	if err != nil {
		s.logger.Debug("Failed to read page location", zap.Error(err))
		pageURL = s.url
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.cfg.Scraper.Timeout)
	defer cancel()

	forms, err := s.deps.detector.Detect(detectCtx, detect.Request{
		HTML:            pageHTML,
		PageURL:         pageURL,
		PageTitle:       pageTitle,
		FormIndex:       formIndex,
		SubtreeSelector: subtree,
	})
	if err != nil {
		return schemas.DetectedForm{}, fmt.Errorf("no fillable forms found: %w", err)
	}
	return forms[0], nil
}

// persistGeneration saves the cycle record. Failures are logged and
// swallowed; persistence never fails a completed cycle.
func (s *Session) persistGeneration(ctx context.Context, gen schemas.Generation) {
	if s.deps.records == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, s.cfg.Persistence.Timeout)
	defer cancel()

	if err := s.deps.records.Save(saveCtx, s.baseURL, gen); err != nil {
		s.logger.Warn("Failed to persist generation record",
			zap.String("generation_id", gen.ID), zap.Error(err))
	}
}

// ActivatePointerDetection detects every form on the page and overlays a
// numbered pulsing badge on each; clicking a badge runs the fill cycle for
// that form.
func (s *Session) ActivatePointerDetection() error {
	ctx, cancel := context.WithTimeout(Detach(s.ctx), s.cfg.Scraper.Timeout+15*time.Second)
	defer cancel()

	forms, err := s.detectAllForms(ctx)
	if err != nil {
		return err
	}

	return s.transition(schemas.ModePointerDetection, func() error {
		script, err := inject.PointerOverlayScript(forms)
		if err != nil {
			return err
		}
		var badges int
		if err := s.evaluateDetached(script, &badges); err != nil {
			return err
		}
		if badges == 0 {
			return fmt.Errorf("no detected form container resolved on the page")
		}
		// transition holds s.mu while activate runs.
		s.detectedForms = forms
		return nil
	})
}

func (s *Session) detectAllForms(ctx context.Context) ([]schemas.DetectedForm, error) {
	tagScript, err := inject.TagTestIDsScript("")
	if err != nil {
		return nil, err
	}
	var tagged int
	if err := s.Evaluate(ctx, tagScript, &tagged); err != nil {
		s.logger.Debug("Test-id tagging failed", zap.Error(err))
	}

	var pageHTML string
	if err := s.Evaluate(ctx, inject.PageHTMLScript, &pageHTML); err != nil {
		return nil, fmt.Errorf("failed to snapshot page HTML: %w", err)
	}

	pageURL, pageTitle, err := s.currentLocation(ctx)
	if err != nil {
		pageURL = s.url
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.cfg.Scraper.Timeout)
	defer cancel()

	return s.deps.detector.Detect(detectCtx, detect.Request{
		HTML:      pageHTML,
		PageURL:   pageURL,
		PageTitle: pageTitle,
		FormIndex: -1,
	})
}
