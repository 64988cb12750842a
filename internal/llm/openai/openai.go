package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	"deepsent/internal/llm"
	"deepsent/internal/store"
	"deepsent/internal/trace"
	"deepsent/internal/types"
)

const (
	providerOpenAI = "openai"
	providerAzure  = "azure"
)

// Generator writes reports with the chat completions API of OpenAI or an
// Azure OpenAI deployment.
type Generator struct {
	client      openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	prompts     *llm.PromptBuilder
}

// NewGenerator builds an OpenAI generator. opts are passed to the client,
// after the API key.
func NewGenerator(cfg *store.Config, apiKey string, prompts *llm.PromptBuilder, opts ...option.RequestOption) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	model := cfg.LLM.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Generator{
		client:      openai.NewClient(opts...),
		provider:    providerOpenAI,
		model:       model,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
		prompts:     prompts,
	}, nil
}

// NewAzureGenerator builds a generator for an Azure OpenAI chat deployment.
func NewAzureGenerator(cfg *store.Config, secrets *store.Secrets, prompts *llm.PromptBuilder) (*Generator, error) {
	if !secrets.AzureReady() {
		return nil, errors.New("AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT and CHAT_DEPLOYMENT are required")
	}
	client := openai.NewClient(
		azure.WithEndpoint(secrets.AzureEndpoint, secrets.AzureAPIVersion),
		azure.WithAPIKey(secrets.AzureAPIKey),
		option.WithMaxRetries(0),
	)
	return &Generator{
		client:      client,
		provider:    providerAzure,
		model:       secrets.ChatDeployment,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
		prompts:     prompts,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, g.provider+"-api-call")
	defer span.End()
	trace.Annotate(ctx, trace.AttrProvider.String(g.provider))

	prompt, err := g.prompts.Build(ctx, req)
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(g.maxTokens))
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(float64(g.temperature))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", upstreamError(g.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", &llm.UpstreamError{Provider: g.provider, Err: llm.ErrEmptyResponse}
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", &llm.UpstreamError{Provider: g.provider, Err: llm.ErrEmptyResponse}
	}
	return out, nil
}

// Embedder embeds texts with an OpenAI or Azure embedding model.
type Embedder struct {
	client   openai.Client
	provider string
	model    string
}

// NewEmbedder builds an OpenAI embedder; model defaults to text-embedding-3-small.
func NewEmbedder(apiKey, model string, opts ...option.RequestOption) (*Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Embedder{client: openai.NewClient(opts...), provider: providerOpenAI, model: model}, nil
}

// NewAzureEmbedder builds an embedder for the EMBEDDING_DEPLOYMENT deployment.
func NewAzureEmbedder(secrets *store.Secrets) (*Embedder, error) {
	if secrets.AzureAPIKey == "" || secrets.AzureEndpoint == "" || secrets.EmbeddingDeployment == "" {
		return nil, errors.New("AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT and EMBEDDING_DEPLOYMENT are required")
	}
	client := openai.NewClient(
		azure.WithEndpoint(secrets.AzureEndpoint, secrets.AzureAPIVersion),
		azure.WithAPIKey(secrets.AzureAPIKey),
	)
	return &Embedder{client: client, provider: providerAzure, model: secrets.EmbeddingDeployment}, nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, span := trace.StartSpan(ctx, e.provider+"-embeddings")
	defer span.End()

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, upstreamError(e.provider, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func upstreamError(provider string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{Provider: provider, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &llm.UpstreamError{Provider: provider, Err: err}
}
