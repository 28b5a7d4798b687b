package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonathan/instagram-roaster/internal/observability"
)

// GenerationError is returned when the upstream service rejects a request or fails.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ClientFactory opens a Client for one API key.
type ClientFactory func(ctx context.Context, apiKey string) (Client, error)

// Generator turns prompts into text using a key from the pool.
// A client is opened per call; nothing is retried.
type Generator struct {
	pool    *KeyPool
	factory ClientFactory
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClientFactory replaces the function used to open clients.
func WithClientFactory(factory ClientFactory) GeneratorOption {
	return func(g *Generator) { g.factory = factory }
}

// NewGenerator creates a Generator for the configured model.
func NewGenerator(config *Config, pool *KeyPool, opts ...GeneratorOption) *Generator {
	g := &Generator{
		pool: pool,
		factory: func(ctx context.Context, apiKey string) (Client, error) {
			return NewClient(ctx, config, apiKey)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends prompt upstream. override, when non-empty, is used instead of a pool key.
// Upstream failures are returned as *GenerationError; an empty pool as ErrNoCredentials.
func (g *Generator) Generate(ctx context.Context, prompt, override string) (string, error) {
	text, err := g.generate(ctx, prompt, override)

	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeError
	}
	observability.GenerationsTotal.WithLabelValues(outcome).Inc()

	return text, err
}

func (g *Generator) generate(ctx context.Context, prompt, override string) (string, error) {
	apiKey, err := g.pool.Pick(override)
	if err != nil {
		return "", err
	}

	client, err := g.factory(ctx, apiKey)
	if err != nil {
		return "", &GenerationError{Message: err.Error(), Cause: err}
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			slog.Warn("failed to close LLM client", "error", cerr)
		}
	}()

	text, err := client.GenerateContent(ctx, prompt)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return "", genErr
		}
		return "", &GenerationError{Message: err.Error(), Cause: err}
	}

	return CleanText(text), nil
}
