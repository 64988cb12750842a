package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/llm"
	"deepsent/internal/store"
	"deepsent/internal/types"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := store.Default()
	cfg.LLM.Model = "gpt-4o-mini"
	g, err := NewGenerator(cfg, "test-key", llm.NewPromptBuilder(llm.DefaultPromptConfig(), nil), option.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return g
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  # AAPL Sentiment Snapshot\n"}}]}`))
	})

	out, err := g.Generate(context.Background(), types.GenerateRequest{Ticker: "AAPL", Period: "a to b"})
	require.NoError(t, err)
	assert.Equal(t, "# AAPL Sentiment Snapshot", out)
	assert.Equal(t, "gpt-4o-mini", body["model"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestGenerateMapsStatusCodes(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	_, err := g.Generate(context.Background(), types.GenerateRequest{Ticker: "AAPL"})
	require.Error(t, err)

	var ue *llm.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.True(t, llm.IsTransient(err))
}

func TestGenerateEmptyChoices(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	})

	_, err := g.Generate(context.Background(), types.GenerateRequest{Ticker: "AAPL"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	assert.False(t, llm.IsTransient(err))
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(store.Default(), "", nil)
	assert.Error(t, err)

	_, err = NewAzureGenerator(store.Default(), &store.Secrets{}, nil)
	assert.Error(t, err)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	e, err := NewEmbedder("k", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vecs)

	vecs, err = e.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}
