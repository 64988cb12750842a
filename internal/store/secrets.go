package store

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Secrets are the provider credentials. They are only ever read from the
// environment, never from config.yaml.
type Secrets struct {
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	AzureAPIKey         string `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint       string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIVersion     string `envconfig:"OPENAI_API_VERSION" default:"2023-05-15"`
	ChatDeployment      string `envconfig:"CHAT_DEPLOYMENT"`
	EmbeddingDeployment string `envconfig:"EMBEDDING_DEPLOYMENT"`
	AnthropicAPIKey     string `envconfig:"ANTHROPIC_API_KEY"`
	AlphaVantageAPIKey  string `envconfig:"ALPHAVANTAGE_API_KEY"`
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	return &s, nil
}

// AzureReady reports whether the Azure OpenAI endpoint is fully configured.
func (s *Secrets) AzureReady() bool {
	return s.AzureAPIKey != "" && s.AzureEndpoint != "" && s.ChatDeployment != ""
}
