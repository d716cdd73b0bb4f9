package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/opendroids/sparkd/internal/persona"
)

// AnthropicOptions configure the Anthropic generator.
type AnthropicOptions struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Anthropic generates replies through the Messages API. A provider error
// falls back to the wrapped generator when one is set.
type Anthropic struct {
	client   *anthropic.Client
	opts     AnthropicOptions
	fallback Generator
	logger   *slog.Logger
}

// NewAnthropic creates the Anthropic generator. An empty APIKey falls
// through to the SDK's environment lookup. fallback may be nil.
func NewAnthropic(opts AnthropicOptions, fallback Generator, logger *slog.Logger) *Anthropic {
	if opts.Model == "" {
		opts.Model = anthropic.ModelClaude3_5Sonnet20241022
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 256
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Anthropic{
		client:   &client,
		opts:     opts,
		fallback: fallback,
		logger:   logger,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: persona.SystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(req))),
		},
		Temperature: anthropic.Float(a.opts.Temperature),
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return a.fallbackOrFail(ctx, req, fmt.Errorf("anthropic api error: %w", err))
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			if text := block.AsText().Text; text != "" {
				return text, nil
			}
		}
	}

	return a.fallbackOrFail(ctx, req, fmt.Errorf("anthropic returned no text"))
}

func (a *Anthropic) fallbackOrFail(ctx context.Context, req Request, cause error) (string, error) {
	if a.fallback == nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, cause)
	}
	a.logger.Warn("provider failed, using offline templates", "provider", a.Name(), "error", cause)
	return a.fallback.Generate(ctx, req)
}
