package claude

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"deepsent/internal/llm"
	"deepsent/internal/store"
	"deepsent/internal/trace"
	"deepsent/internal/types"
)

const (
	provider     = "claude"
	defaultModel = "claude-sonnet-4-5-20250929"
)

// Generator writes reports with the Anthropic Messages API.
type Generator struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	prompts     *llm.PromptBuilder
}

// NewGenerator builds a Claude generator. opts are passed to the client,
// after the API key.
func NewGenerator(cfg *store.Config, apiKey string, prompts *llm.PromptBuilder, opts ...option.RequestOption) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}
	model := cfg.LLM.Model
	if model == "" || !strings.HasPrefix(model, "claude") {
		model = defaultModel
	}
	maxTokens := cfg.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Generator{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.LLM.Temperature,
		prompts:     prompts,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()
	trace.Annotate(ctx, trace.AttrProvider.String(provider))

	prompt, err := g.prompts.Build(ctx, req)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: prompt.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.temperature))
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &llm.UpstreamError{Provider: provider, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", &llm.UpstreamError{Provider: provider, Err: err}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			sb.WriteString(block.Text)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", &llm.UpstreamError{Provider: provider, Err: llm.ErrEmptyResponse}
	}
	return out, nil
}
