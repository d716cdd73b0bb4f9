package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/opendroids/sparkd/internal/persona"
)

// OpenAIOptions configure the OpenAI generator.
type OpenAIOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// OpenAI generates replies through the Chat Completions API. A provider
// error falls back to the wrapped generator when one is set.
type OpenAI struct {
	client   *openai.Client
	opts     OpenAIOptions
	fallback Generator
	logger   *slog.Logger
}

// NewOpenAI creates the OpenAI generator. An empty APIKey falls through to
// the SDK's environment lookup. fallback may be nil.
func NewOpenAI(opts OpenAIOptions, fallback Generator, logger *slog.Logger) *OpenAI {
	if opts.Model == "" {
		opts.Model = openai.ChatModelGPT4oMini
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 256
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAI{
		client:   &client,
		opts:     opts,
		fallback: fallback,
		logger:   logger,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(persona.SystemPrompt()),
			openai.UserMessage(userPrompt(req)),
		},
		Model:               o.opts.Model,
		Temperature:         openai.Float(o.opts.Temperature),
		MaxCompletionTokens: openai.Int(o.opts.MaxTokens),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return o.fallbackOrFail(ctx, req, fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return o.fallbackOrFail(ctx, req, fmt.Errorf("openai returned no text"))
	}

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) fallbackOrFail(ctx context.Context, req Request, cause error) (string, error) {
	if o.fallback == nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, cause)
	}
	o.logger.Warn("provider failed, using offline templates", "provider", o.Name(), "error", cause)
	return o.fallback.Generate(ctx, req)
}
