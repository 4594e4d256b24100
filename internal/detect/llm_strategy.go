package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/llm"
)

const formAnalysisSystemPrompt = `You are a form analysis engine. You receive the HTML of a web page and identify every fillable form on it.

Respond ONLY with a JSON array of form objects, no prose. Each form object has:
- "formIndex": zero-based index of the form in document order
- "containerSelector": a CSS selector that uniquely resolves the form container
- "fields": array of field objects

Each field object has:
- "selector": a CSS selector that uniquely resolves the input. Prefer [data-testid="..."] when present, then #id, then [name="..."]
- "alternativeSelector": a second selector to try if the first fails, or ""
- "type": the input type ("text", "email", "password", "date", "number", "tel", "textarea", "select", "checkbox", "radio", "file")
- "label": the human-readable label of the field
- "required": true if the field is required
- "testId": the data-testid value when present, else ""

A form carrying a data-gf-viewport attribute was fully visible in the user's viewport when the page was captured; list such forms before the rest.

Ignore hidden inputs, submit buttons, and honeypot fields. Return [] if the page has no fillable forms.`

// LLMStrategy asks the chat-completion client to analyze the page HTML.
type LLMStrategy struct {
	client    llm.Client
	optimizer HTMLOptimizer
}

// HTMLOptimizer reduces raw HTML before it is sent to the model. A nil
// optimizer means the raw snapshot is sent as-is.
type HTMLOptimizer interface {
	Optimize(rawHTML string) string
}

// NewLLMStrategy builds the LLM-backed strategy.
func NewLLMStrategy(client llm.Client, optimizer HTMLOptimizer) *LLMStrategy {
	return &LLMStrategy{client: client, optimizer: optimizer}
}

// Name implements Strategy.
func (s *LLMStrategy) Name() string { return "llm" }

// Detect implements Strategy.
func (s *LLMStrategy) Detect(ctx context.Context, req Request) ([]schemas.DetectedForm, error) {
	pageHTML := req.HTML
	if s.optimizer != nil {
		pageHTML = s.optimizer.Optimize(pageHTML)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Page URL: %s\nPage title: %s\n", req.PageURL, req.PageTitle)
	if req.SubtreeSelector != "" {
		fmt.Fprintf(&sb, "Only analyze the subtree under the selector: %s\n", req.SubtreeSelector)
	}
	sb.WriteString("\nHTML:\n")
	sb.WriteString(pageHTML)

	response, err := s.client.GenerateResponse(ctx, llm.GenerationRequest{
		SystemPrompt: formAnalysisSystemPrompt,
		UserPrompt:   sb.String(),
		ForceJSON:    true,
		Temperature:  0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM form analysis failed: %w", err)
	}

	forms, err := llm.ParseJSONResponse[[]schemas.DetectedForm](response)
	if err != nil {
		return nil, fmt.Errorf("LLM form analysis returned unparseable JSON: %w", err)
	}

	return filterByIndex(*forms, req.FormIndex), nil
}

// filterByIndex narrows the result to a single requested form. An index
// outside the result range yields the full list so the caller can still
// pick the primary form.
func filterByIndex(forms []schemas.DetectedForm, formIndex int) []schemas.DetectedForm {
	if formIndex < 0 {
		return forms
	}
	for _, f := range forms {
		if f.FormIndex == formIndex {
			return []schemas.DetectedForm{f}
		}
	}
	return forms
}
