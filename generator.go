package quizforge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Generator produces raw, still-unshaped question data for a piece of text.
// Every backend returns the decoded payload as-is; extraction and
// normalization happen downstream so all backends share one pipeline.
type Generator interface {
	GenerateRaw(ctx context.Context, req GenerationRequest) (any, error)
}

// HTTPGenerator calls the external generation API.
type HTTPGenerator struct {
	client *Client
}

func NewHTTPGenerator(client *Client) *HTTPGenerator {
	return &HTTPGenerator{client: client}
}

func (g *HTTPGenerator) GenerateRaw(ctx context.Context, req GenerationRequest) (any, error) {
	var payload any
	if err := g.client.PostJSON(ctx, "/generate/qa", req, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// NewGenerator builds the backend named by cfg.GeneratorBackend.
func NewGenerator(cfg *Config, log *zap.SugaredLogger, rec *DebugRecorder) (Generator, error) {
	switch cfg.GeneratorBackend {
	case "", BackendHTTP:
		if cfg.GenerationURL == "" {
			return nil, fmt.Errorf("%w: GENERATION_API_URL is not set", ErrConfig)
		}
		client := NewClient(cfg.GenerationURL,
			WithClientLogger(log),
			WithDebugRecorder(rec),
		)
		return NewHTTPGenerator(client), nil
	case BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrConfig)
		}
		return NewOpenAIGenerator(cfg.OpenAIKey, log, rec), nil
	default:
		return nil, fmt.Errorf("%w: unknown generator backend %q", ErrConfig, cfg.GeneratorBackend)
	}
}
