// Package detect locates fillable forms on a page. Detection runs an ordered
// list of strategies; the first one to return at least one form wins. The
// LLM strategy reads the optimized page HTML, the heuristic strategy walks a
// DOM snapshot directly, so detection still works when no LLM is reachable.
package detect

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

// ErrNoFormsFound is returned when every strategy completed but none of
// them produced a form.
var ErrNoFormsFound = errors.New("no fillable forms found on page")

// Request carries everything a strategy may need. HTML is a DOM snapshot
// taken after test-id tagging, so attribute-based selectors in the snapshot
// resolve on the live page too.
type Request struct {
	HTML      string
	PageURL   string
	PageTitle string

	// FormIndex selects a specific form when >= 0; -1 means pick the
	// primary form.
	FormIndex int

	// SubtreeSelector restricts detection to the descendants of one
	// container, used when the operator hand-picked an element.
	SubtreeSelector string
}

// Strategy is one way of finding forms. Implementations must be safe for
// concurrent use.
type Strategy interface {
	Name() string
	Detect(ctx context.Context, req Request) ([]schemas.DetectedForm, error)
}

// Detector tries its strategies in order and returns the first non-empty
// result.
type Detector struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewDetector builds a detector over the given ordered strategies.
func NewDetector(logger *zap.Logger, strategies ...Strategy) *Detector {
	return &Detector{
		strategies: strategies,
		logger:     logger.Named("detect"),
	}
}

// Detect runs the strategy list. A strategy error is logged and the next
// strategy is tried; only when every strategy fails or comes back empty is
// an error returned.
func (d *Detector) Detect(ctx context.Context, req Request) ([]schemas.DetectedForm, error) {
	if len(d.strategies) == 0 {
		return nil, fmt.Errorf("no detection strategies configured")
	}

	var lastErr error
	for _, s := range d.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		forms, err := s.Detect(ctx, req)
		if err != nil {
			d.logger.Warn("Detection strategy failed, trying next",
				zap.String("strategy", s.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if len(forms) == 0 {
			d.logger.Debug("Detection strategy found no forms",
				zap.String("strategy", s.Name()))
			continue
		}

		d.logger.Info("Forms detected",
			zap.String("strategy", s.Name()),
			zap.Int("forms", len(forms)),
		)
		return forms, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all detection strategies failed: %w", lastErr)
	}
	return nil, ErrNoFormsFound
}
