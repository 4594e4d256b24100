package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/inject"
)

// transition is the single gate for interaction-mode changes. It enforces
// mutual exclusivity: entering a non-idle mode first deactivates whatever
// mode is active. Re-activating the current mode is a no-op. activate, when
// non-nil, runs under s.mu after the old mode's page state is torn down and
// must install the new mode's page state; a failed activation leaves the
// session idle.
func (s *Session) transition(target schemas.InteractionMode, activate func() error) error {
	if !target.Valid() {
		return fmt.Errorf("invalid interaction mode %q", target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == target {
		s.logger.Debug("Mode already active, ignoring", zap.String("mode", target.String()))
		return nil
	}

	if err := s.deactivateLocked(); err != nil {
		s.logger.Warn("Failed to tear down previous mode cleanly",
			zap.String("mode", s.mode.String()), zap.Error(err))
	}
	s.mode = schemas.ModeIdle

	if target == schemas.ModeIdle {
		return nil
	}

	if activate != nil {
		if err := activate(); err != nil {
			return fmt.Errorf("failed to activate mode %s: %w", target, err)
		}
	}
	s.mode = target
	s.logger.Info("Interaction mode changed", zap.String("mode", target.String()))
	return nil
}

// deactivateLocked evaluates the cleanup script of the active mode. Caller
// holds s.mu.
func (s *Session) deactivateLocked() error {
	switch s.mode {
	case schemas.ModeElementSelection:
		return s.evaluateDetached(inject.ElementSelectionCleanupScript(), nil)
	case schemas.ModePointerDetection:
		return s.evaluateDetached(inject.PointerOverlayCleanupScript(), nil)
	case schemas.ModeGhostWriter:
		s.clearHints()
		return s.evaluateDetached(inject.GhostWriterCleanupScript(), nil)
	default:
		return nil
	}
}

// ActivateElementSelection arms the click-to-select overlay.
func (s *Session) ActivateElementSelection() error {
	return s.transition(schemas.ModeElementSelection, func() error {
		return s.evaluateDetached(inject.ElementSelectionScript(), nil)
	})
}

// ActivateGhostWriter arms the focus-driven hint generator. Mutually
// exclusive with element selection.
func (s *Session) ActivateGhostWriter() error {
	return s.transition(schemas.ModeGhostWriter, func() error {
		return s.evaluateDetached(inject.GhostWriterScript(), nil)
	})
}

// Deactivate returns the session to idle, tearing down any active overlay.
func (s *Session) Deactivate() error {
	return s.transition(schemas.ModeIdle, nil)
}

func (s *Session) clearHints() {
	s.hintMu.Lock()
	defer s.hintMu.Unlock()
	s.hints = make(map[string]hintEntry)
	s.latestHintFor = ""
}
