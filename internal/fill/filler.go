// Package fill writes generated values into a live page. Filling is strictly
// sequential so progress callbacks arrive in field order and overlay state
// never interleaves. The per-field work happens inside the page through one
// injected routine; the host only decides sequencing, skip semantics, and
// progress reporting.
package fill

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Executor evaluates a script in the page and unmarshals its JSON result
// into out. The session layer backs this with chromedp.Evaluate; tests use
// a fake.
type Executor interface {
	Evaluate(ctx context.Context, script string, out any) error
}

// ProgressFunc receives one callback per field per status change. errMsg is
// empty unless status is error.
type ProgressFunc func(index int, status schemas.FieldStatus, errMsg string)

// fillOutcome is what the page-side routine reports back.
type fillOutcome struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Filler fills fields one at a time.
type Filler struct {
	logger *zap.Logger
}

// NewFiller builds a filler.
func NewFiller(logger *zap.Logger) *Filler {
	return &Filler{logger: logger.Named("fill")}
}

// Fill writes values into fields in order. A field with no non-empty value
// is reported skipped and never touches the page. DOM-level failures are
// reported per field and never abort the remaining fields; only a cancelled
// context stops the loop.
func (f *Filler) Fill(ctx context.Context, exec Executor, fields []schemas.FormField, values map[string]string, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(int, schemas.FieldStatus, string) {}
	}

	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}

		value := values[field.Selector]
		if value == "" {
			onProgress(i, schemas.StatusSkipped, "")
			continue
		}

		onProgress(i, schemas.StatusInProgress, "")

		script, err := FillFieldScript(field, value)
		if err != nil {
			onProgress(i, schemas.StatusError, err.Error())
			continue
		}

		var outcome fillOutcome
		if err := exec.Evaluate(ctx, script, &outcome); err != nil {
			f.logger.Warn("Fill routine evaluation failed",
				zap.String("selector", field.Selector), zap.Error(err))
			onProgress(i, schemas.StatusError, err.Error())
			continue
		}

		switch outcome.Status {
		case "done":
			onProgress(i, schemas.StatusDone, "")
		case "skipped":
			onProgress(i, schemas.StatusSkipped, "")
		default:
			msg := outcome.Error
			if msg == "" {
				msg = fmt.Sprintf("fill routine returned status %q", outcome.Status)
			}
			onProgress(i, schemas.StatusError, msg)
		}
	}
	return nil
}

// FillFieldScript renders the page-side routine for one field. Field and
// value travel as JSON literals so selector contents can never break out of
// the script.
func FillFieldScript(field schemas.FormField, value string) (string, error) {
	fieldJSON, err := json.MarshalToString(field)
	if err != nil {
		return "", fmt.Errorf("failed to encode field: %w", err)
	}
	valueJSON, err := json.MarshalToString(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	sentinelJSON, _ := json.MarshalToString(firstOptionSentinel)
	return fmt.Sprintf(fillFieldRoutine, fieldJSON, valueJSON, sentinelJSON), nil
}
