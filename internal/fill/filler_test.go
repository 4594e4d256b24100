package fill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/generate"
)

// fakeExecutor replays canned outcomes and records every script it ran.
type fakeExecutor struct {
	outcomes []fillOutcome
	errs     []error
	scripts  []string
}

func (f *fakeExecutor) Evaluate(_ context.Context, script string, out any) error {
	i := len(f.scripts)
	f.scripts = append(f.scripts, script)
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	outcome := fillOutcome{Status: "done"}
	if i < len(f.outcomes) {
		outcome = f.outcomes[i]
	}
	*(out.(*fillOutcome)) = outcome
	return nil
}

type progressEvent struct {
	index  int
	status schemas.FieldStatus
	errMsg string
}

func recordProgress(events *[]progressEvent) ProgressFunc {
	return func(index int, status schemas.FieldStatus, errMsg string) {
		*events = append(*events, progressEvent{index, status, errMsg})
	}
}

func TestFill_SequentialProgression(t *testing.T) {
	fields := []schemas.FormField{
		{Selector: "#name", Type: "text"},
		{Selector: "#email", Type: "email"},
	}
	values := map[string]string{"#name": "Luke", "#email": "luke@rebels.org"}

	exec := &fakeExecutor{}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)

	require.Len(t, exec.scripts, 2)
	assert.Equal(t, []progressEvent{
		{0, schemas.StatusInProgress, ""},
		{0, schemas.StatusDone, ""},
		{1, schemas.StatusInProgress, ""},
		{1, schemas.StatusDone, ""},
	}, events)
}

func TestFill_EmptyValueIsSkippedNotError(t *testing.T) {
	fields := []schemas.FormField{
		{Selector: "#a", Type: "text"},
		{Selector: "#b", Type: "text"},
	}
	values := map[string]string{"#b": "filled"}

	exec := &fakeExecutor{}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)

	// The skipped field never reached the page.
	require.Len(t, exec.scripts, 1)
	assert.Equal(t, progressEvent{0, schemas.StatusSkipped, ""}, events[0])
	assert.Equal(t, progressEvent{1, schemas.StatusInProgress, ""}, events[1])
	assert.Equal(t, progressEvent{1, schemas.StatusDone, ""}, events[2])
}

func TestFill_ElementNotFoundReportsErrorAndContinues(t *testing.T) {
	fields := []schemas.FormField{
		{Selector: "#missing", Type: "text"},
		{Selector: "#present", Type: "text"},
	}
	values := map[string]string{"#missing": "x", "#present": "y"}

	exec := &fakeExecutor{outcomes: []fillOutcome{
		{Status: "error", Error: "not found"},
		{Status: "done"},
	}}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)

	assert.Contains(t, events, progressEvent{0, schemas.StatusError, "not found"})
	assert.Contains(t, events, progressEvent{1, schemas.StatusDone, ""})
}

func TestFill_EvaluationFailureReportsError(t *testing.T) {
	fields := []schemas.FormField{{Selector: "#a", Type: "text"}}
	values := map[string]string{"#a": "x"}

	exec := &fakeExecutor{errs: []error{errors.New("target crashed")}}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, schemas.StatusError, events[1].status)
	assert.Contains(t, events[1].errMsg, "target crashed")
}

func TestFill_FileInputSkipped(t *testing.T) {
	fields := []schemas.FormField{{Selector: "#upload", Type: "file"}}
	values := map[string]string{"#upload": "avatar.png"}

	exec := &fakeExecutor{outcomes: []fillOutcome{{Status: "skipped"}}}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)

	assert.Equal(t, progressEvent{0, schemas.StatusSkipped, ""}, events[1])
}

func TestFill_ContextCancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fields := []schemas.FormField{{Selector: "#a", Type: "text"}}
	err := NewFiller(zaptest.NewLogger(t)).Fill(ctx, &fakeExecutor{}, fields, map[string]string{"#a": "x"}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFillFieldScript_EncodesArgumentsAsJSON(t *testing.T) {
	field := schemas.FormField{
		Selector:            `input[name="a'b"]`,
		AlternativeSelector: "#alt",
		Type:                "text",
		Label:               "Name",
	}
	script, err := FillFieldScript(field, `va"lue`)
	require.NoError(t, err)

	assert.Contains(t, script, `\"a'b\"`)
	assert.Contains(t, script, `"va\"lue"`)
	assert.Contains(t, script, "#alt")
	// The routine carries the selector fallback chain and select matching.
	assert.Contains(t, script, "byLabel")
	assert.Contains(t, script, "o.textContent.trim() === value.trim()")
	assert.Contains(t, script, "scrollIntoView")
}

func TestFirstOptionSentinel_MatchesGenerator(t *testing.T) {
	assert.Equal(t, generate.SelectFirstOption, firstOptionSentinel)
}

func TestFill_SelectLabelMatchReportsDone(t *testing.T) {
	// Value "opt2" matches the visible option label rather than any option
	// value; the page routine resolves it and reports done.
	fields := []schemas.FormField{{Selector: "#choice", Type: "select"}}
	values := map[string]string{"#choice": "opt2"}

	exec := &fakeExecutor{outcomes: []fillOutcome{{Status: "done"}}}
	var events []progressEvent
	err := NewFiller(zaptest.NewLogger(t)).Fill(context.Background(), exec, fields, values, recordProgress(&events))
	require.NoError(t, err)
	assert.Equal(t, progressEvent{0, schemas.StatusDone, ""}, events[1])
}
