package llm

import (
	"context"
)

// GenerationRequest carries one chat-completion call. ForceJSON asks the
// provider for a JSON-typed response; callers still parse defensively
// through ParseJSONResponse because providers fence output anyway.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	ForceJSON    bool
	Temperature  float32
}

// Client is the chat-completion contract consumed by the form detector, the
// data generation pipeline, and the ghost writer. Every call is fallible and
// must respect ctx; callers bound it with their own timeout and fall back on
// any error.
type Client interface {
	GenerateResponse(ctx context.Context, req GenerationRequest) (string, error)
}
