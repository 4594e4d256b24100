// Package generate produces field values for a detected form. The primary
// path asks the LLM for theme-appropriate data under a hard timeout; any
// failure routes to the deterministic per-theme fallback table, so the fill
// stage always receives a value for every field.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/llm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dataGenerationSystemPrompt = `You generate realistic fake data for web form testing. You receive a list of form fields and a persona theme.

Respond ONLY with a JSON object:
- "values": object mapping each field's "selector" key to the string value to type into it
- "resourceDescription": one sentence describing the persona you generated

Rules:
- Produce a value for EVERY field in the list, keyed exactly by its selector.
- Values must fit the field type (a valid email for email fields, YYYY-MM-DD for date fields, digits for number fields).
- For checkbox/radio fields answer "true" or "false".
- Stay in character for the given theme.`

// Pipeline runs one data generation cycle.
type Pipeline struct {
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewPipeline builds a pipeline. A nil client disables the LLM path and
// every call resolves through the fallback table.
func NewPipeline(client llm.Client, timeout time.Duration, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("generate"),
	}
}

// Generate produces a value for every field. The LLM is given a single
// attempt raced against the configured timeout; on any failure the result
// comes from the fallback table instead. The returned error is always nil
// unless ctx itself is already cancelled.
func (p *Pipeline) Generate(ctx context.Context, fields []schemas.FormField, theme schemas.Theme, customPrompt string) (schemas.GeneratedValues, error) {
	if err := ctx.Err(); err != nil {
		return schemas.GeneratedValues{}, err
	}
	if len(fields) == 0 {
		return schemas.GeneratedValues{Values: map[string]string{}}, nil
	}

	if p.client != nil {
		values, err := p.generateWithLLM(ctx, fields, theme, customPrompt)
		if err == nil {
			return values, nil
		}
		p.logger.Warn("LLM data generation failed, using fallback table",
			zap.String("theme", string(theme)), zap.Error(err))
	}

	return FallbackValues(fields, theme), nil
}

func (p *Pipeline) generateWithLLM(ctx context.Context, fields []schemas.FormField, theme schemas.Theme, customPrompt string) (schemas.GeneratedValues, error) {
	llmCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	fieldsJSON, err := json.MarshalToString(fields)
	if err != nil {
		return schemas.GeneratedValues{}, fmt.Errorf("failed to marshal field metadata: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Theme: %s\n", theme)
	if customPrompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n", customPrompt)
	}
	sb.WriteString("\nFields:\n")
	sb.WriteString(fieldsJSON)

	start := time.Now()
	response, err := p.client.GenerateResponse(llmCtx, llm.GenerationRequest{
		SystemPrompt: dataGenerationSystemPrompt,
		UserPrompt:   sb.String(),
		ForceJSON:    true,
		Temperature:  0.8,
	})
	if err != nil {
		return schemas.GeneratedValues{}, err
	}

	parsed, err := llm.ParseJSONResponse[schemas.GeneratedValues](response)
	if err != nil {
		return schemas.GeneratedValues{}, err
	}
	if len(parsed.Values) == 0 {
		return schemas.GeneratedValues{}, fmt.Errorf("LLM returned an empty value map")
	}

	// The model can drop fields; backfill those from the table so the
	// result stays total.
	missing := 0
	for _, f := range fields {
		if v, ok := parsed.Values[f.Selector]; !ok || v == "" {
			parsed.Values[f.Selector] = FallbackValue(theme, f.Type)
			missing++
		}
	}

	p.logger.Info("Generated field values",
		zap.String("theme", string(theme)),
		zap.Int("fields", len(fields)),
		zap.Int("backfilled", missing),
		zap.Duration("duration", time.Since(start)),
	)
	return *parsed, nil
}
