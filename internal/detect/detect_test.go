package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

type stubStrategy struct {
	name  string
	forms []schemas.DetectedForm
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Detect(_ context.Context, _ Request) ([]schemas.DetectedForm, error) {
	s.calls++
	return s.forms, s.err
}

func oneForm() []schemas.DetectedForm {
	return []schemas.DetectedForm{{
		FormIndex:         0,
		ContainerSelector: "#signup",
		Fields:            []schemas.FormField{{Selector: "#email", Type: "email", Label: "Email"}},
	}}
}

func TestDetector_FirstStrategyWins(t *testing.T) {
	first := &stubStrategy{name: "first", forms: oneForm()}
	second := &stubStrategy{name: "second", forms: oneForm()}
	d := NewDetector(zaptest.NewLogger(t), first, second)

	forms, err := d.Detect(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, forms, 1)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestDetector_FallsThroughOnErrorAndEmpty(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("model unreachable")}
	empty := &stubStrategy{name: "empty"}
	working := &stubStrategy{name: "working", forms: oneForm()}
	d := NewDetector(zaptest.NewLogger(t), failing, empty, working)

	forms, err := d.Detect(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, forms, 1)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestDetector_LogsFailedStrategy(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	failing := &stubStrategy{name: "llm", err: errors.New("model unreachable")}
	working := &stubStrategy{name: "heuristic", forms: oneForm()}
	d := NewDetector(zap.New(core), failing, working)

	_, err := d.Detect(context.Background(), Request{})
	require.NoError(t, err)

	entries := observed.FilterMessage("Detection strategy failed, trying next").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "llm", entries[0].ContextMap()["strategy"])
}

func TestDetector_AllFail(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: errors.New("boom")}
	d := NewDetector(zaptest.NewLogger(t), failing)

	_, err := d.Detect(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}

func TestDetector_AllEmpty(t *testing.T) {
	d := NewDetector(zaptest.NewLogger(t), &stubStrategy{name: "empty"})

	_, err := d.Detect(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNoFormsFound)
}

func TestDetector_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDetector(zaptest.NewLogger(t), &stubStrategy{name: "never", forms: oneForm()})
	_, err := d.Detect(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
}
