package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/fill"
	"github.com/kfalck/ghostfill-cli/internal/generate"
	"github.com/kfalck/ghostfill-cli/internal/inject"
	"github.com/kfalck/ghostfill-cli/internal/llm"
)

const hintSystemPrompt = `You suggest a single realistic value for one web form field, in character for a persona theme. Respond with ONLY the value itself: no quotes, no explanation, no punctuation around it.`

// handleHintRequest generates a themed hint for the focused field and
// delivers it to the page. Requests are serialized by hintMu; when the
// focus moved on while a hint was being generated, the stale result is
// dropped (latest focus wins).
func (s *Session) handleHintRequest(env inject.Envelope) error {
	var req schemas.HintRequest
	if err := inject.DecodePayload(env, &req); err != nil {
		return err
	}
	if req.FieldID == "" {
		return fmt.Errorf("hint request missing field id")
	}

	s.hintMu.Lock()
	s.latestHintFor = req.FieldID
	s.hintMu.Unlock()

	hint := s.generateHint(req)

	s.hintMu.Lock()
	if s.latestHintFor != req.FieldID {
		s.hintMu.Unlock()
		s.logger.Debug("Dropping stale hint", zap.String("field_id", req.FieldID))
		return nil
	}
	s.hints[req.FieldID] = hintEntry{value: hint, fieldType: req.FieldType}
	s.hintMu.Unlock()

	script, err := inject.DeliverHintScript(req.FieldID, hint)
	if err != nil {
		return err
	}
	return s.evaluateDetached(script, nil)
}

// generateHint asks the LLM under the hint timeout, falling back to the
// deterministic table on any failure.
func (s *Session) generateHint(req schemas.HintRequest) string {
	if s.deps.llmClient != nil {
		ctx, cancel := context.WithTimeout(Detach(s.ctx), s.cfg.GhostWriter.HintTimeout)
		defer cancel()

		var sb strings.Builder
		fmt.Fprintf(&sb, "Theme: %s\n", s.theme)
		if s.ghostPrompt != "" {
			fmt.Fprintf(&sb, "Additional instructions: %s\n", s.ghostPrompt)
		}
		fmt.Fprintf(&sb, "Field type: %s\nLabel: %s\nPlaceholder: %s\nPage: %s (%s)\n",
			req.FieldType, req.Label, req.Placeholder, req.PageTitle, req.PageURL)

		response, err := s.deps.llmClient.GenerateResponse(ctx, llm.GenerationRequest{
			SystemPrompt: hintSystemPrompt,
			UserPrompt:   sb.String(),
			Temperature:  0.8,
		})
		if err == nil {
			hint := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"'`))
			if hint != "" {
				return hint
			}
		} else {
			s.logger.Debug("Hint generation failed, using fallback",
				zap.String("field_id", req.FieldID), zap.Error(err))
		}
	}
	return generate.FallbackValue(s.theme, req.FieldType)
}

// handleFillInputByID writes the cached hint into the field carrying the
// given ghost-writer id. Invoked when the user accepts a hint with Tab.
func (s *Session) handleFillInputByID(env inject.Envelope) error {
	var payload struct {
		FieldID string `json:"fieldId"`
	}
	if err := inject.DecodePayload(env, &payload); err != nil {
		return err
	}

	s.hintMu.Lock()
	entry, ok := s.hints[payload.FieldID]
	delete(s.hints, payload.FieldID)
	s.hintMu.Unlock()

	if !ok {
		return fmt.Errorf("no pending hint for field %s", payload.FieldID)
	}

	field := schemas.FormField{
		Selector: fmt.Sprintf(`[data-gf-ghost-id="%s"]`, payload.FieldID),
		Type:     entry.fieldType,
	}
	script, err := fill.FillFieldScript(field, entry.value)
	if err != nil {
		return err
	}
	return s.evaluateDetached(script, nil)
}
