package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/internal/config"
)

// NewClient constructs the configured provider client, wrapped with a rate
// limiter when llm.requests_per_minute is set.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err = NewGeminiClient(cfg, logger)
	case config.ProviderOpenAI:
		client, err = NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		client = NewRateLimitedClient(client, cfg.RequestsPerMinute)
	}
	return client, nil
}
