package llm

import (
	"context"
	"fmt"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig covers OpenAI itself and OpenAI-compatible gateways such as
// Portkey, which only differ by base URL and extra headers.
type OpenAIConfig struct {
	Provider    string
	APIKey      string
	OrgID       string
	BaseURL     string
	Model       string
	Temperature float32
	Headers     map[string]string
	HTTPClient  *http.Client
}

type OpenAISummarizer struct {
	provider    string
	model       string
	temperature float32
	client      *openai.Client
}

func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.OrgID = cfg.OrgID

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if len(cfg.Headers) > 0 {
		wrapped := *httpClient
		base := wrapped.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped.Transport = &headerTransport{base: base, headers: cfg.Headers}
		httpClient = &wrapped
	}
	clientCfg.HTTPClient = httpClient

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	return &OpenAISummarizer{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      openai.NewClientWithConfig(clientCfg),
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Printf("llm %s error: %v", s.provider, err)
		return "", fmt.Errorf("%s API error: %w", s.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", s.provider)
	}
	content := resp.Choices[0].Message.Content
	log.Printf("llm %s response size=%d tokens_in=%d tokens_out=%d", s.provider, len(content), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return content, nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
