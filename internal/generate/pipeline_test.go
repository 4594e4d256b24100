package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/llm"
)

type stubLLM struct {
	response string
	err      error
	delay    time.Duration
	lastReq  llm.GenerationRequest
}

func (s *stubLLM) GenerateResponse(ctx context.Context, req llm.GenerationRequest) (string, error) {
	s.lastReq = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.response, s.err
}

func emailField() []schemas.FormField {
	return []schemas.FormField{{Selector: "#email", Type: "email"}}
}

func TestGenerate_LLMPath(t *testing.T) {
	client := &stubLLM{response: `{"values": {"#email": "han.solo@falcon.corellia"}, "resourceDescription": "A smuggler persona"}`}
	p := NewPipeline(client, time.Second, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), emailField(), schemas.ThemeStarWarsHero, "")
	require.NoError(t, err)
	assert.Equal(t, "han.solo@falcon.corellia", got.Values["#email"])
	assert.Equal(t, "A smuggler persona", got.ResourceDescription)
	assert.True(t, client.lastReq.ForceJSON)
}

func TestGenerate_CustomPromptIncluded(t *testing.T) {
	client := &stubLLM{response: `{"values": {"#email": "x@y.z"}}`}
	p := NewPipeline(client, time.Second, zaptest.NewLogger(t))

	_, err := p.Generate(context.Background(), emailField(), schemas.ThemeSuperhero, "stay formal")
	require.NoError(t, err)
	assert.Contains(t, client.lastReq.UserPrompt, "stay formal")
	assert.Contains(t, client.lastReq.UserPrompt, "SUPERHERO")
}

func TestGenerate_FallbackOnLLMError(t *testing.T) {
	client := &stubLLM{err: errors.New("model unreachable")}
	p := NewPipeline(client, time.Second, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), emailField(), schemas.ThemeStarWarsHero, "")
	require.NoError(t, err)
	assert.Equal(t, "luke.skywalker@rebelalliance.com", got.Values["#email"])
}

func TestGenerate_FallbackOnMalformedJSON(t *testing.T) {
	client := &stubLLM{response: "sorry, I cannot help with that"}
	p := NewPipeline(client, time.Second, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), emailField(), schemas.ThemeStarWarsHero, "")
	require.NoError(t, err)
	assert.Equal(t, "luke.skywalker@rebelalliance.com", got.Values["#email"])
}

func TestGenerate_FallbackOnTimeout(t *testing.T) {
	client := &stubLLM{
		response: `{"values": {"#email": "too-late@example.com"}}`,
		delay:    200 * time.Millisecond,
	}
	p := NewPipeline(client, 20*time.Millisecond, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), emailField(), schemas.ThemeStarWarsHero, "")
	require.NoError(t, err)
	assert.Equal(t, "luke.skywalker@rebelalliance.com", got.Values["#email"])
}

func TestGenerate_BackfillsMissingFields(t *testing.T) {
	fields := []schemas.FormField{
		{Selector: "#email", Type: "email"},
		{Selector: "#name", Type: "text"},
	}
	client := &stubLLM{response: `{"values": {"#email": "leia@alderaan.gov"}}`}
	p := NewPipeline(client, time.Second, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), fields, schemas.ThemeStarWarsHero, "")
	require.NoError(t, err)
	assert.Equal(t, "leia@alderaan.gov", got.Values["#email"])
	assert.Equal(t, "Luke Skywalker", got.Values["#name"])
}

func TestGenerate_NilClientUsesFallback(t *testing.T) {
	p := NewPipeline(nil, time.Second, zaptest.NewLogger(t))

	got, err := p.Generate(context.Background(), emailField(), "UNHEARD_OF_THEME", "")
	require.NoError(t, err)
	assert.Equal(t, "alex.morgan@example.com", got.Values["#email"])
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(nil, time.Second, zaptest.NewLogger(t))
	_, err := p.Generate(ctx, emailField(), schemas.ThemeStarWarsHero, "")
	require.ErrorIs(t, err, context.Canceled)
}
