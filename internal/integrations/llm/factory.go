package llm

import (
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderPortkey   = "portkey"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"

	DefaultOpenAIModel    = "gpt-4o"
	DefaultPortkeyModel   = "gemini-2.0-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultPortkeyBaseURL = "https://api.portkey.ai/v1"
)

// Settings is the provider-agnostic view of the LLM configuration.
type Settings struct {
	Provider          string
	Model             string
	Temperature       float64
	RequestDelay      time.Duration
	OpenAIAPIKey      string
	OpenAIOrgID       string
	OpenAIBaseURL     string
	PortkeyAPIKey     string
	PortkeyVirtualKey string
	PortkeyBaseURL    string
	AnthropicAPIKey   string
	AnthropicBaseURL  string
}

// ResolveProvider returns the configured provider, or picks the first one
// with a key when none is set.
func ResolveProvider(s Settings) string {
	if p := strings.ToLower(strings.TrimSpace(s.Provider)); p != "" {
		return p
	}
	switch {
	case s.PortkeyAPIKey != "":
		return ProviderPortkey
	case s.OpenAIAPIKey != "":
		return ProviderOpenAI
	case s.AnthropicAPIKey != "":
		return ProviderAnthropic
	default:
		return ProviderNone
	}
}

// New builds the summarizer for the resolved provider. Missing credentials
// yield a Disabled summarizer so reports still render without narrative.
func New(s Settings, httpClient *http.Client) (Summarizer, string) {
	provider := ResolveProvider(s)
	var base Summarizer
	switch provider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return Disabled{Reason: "openai_api_key is not set"}, provider
		}
		base = NewOpenAISummarizer(OpenAIConfig{
			Provider:    ProviderOpenAI,
			APIKey:      s.OpenAIAPIKey,
			OrgID:       s.OpenAIOrgID,
			BaseURL:     s.OpenAIBaseURL,
			Model:       modelOrDefault(s.Model, DefaultOpenAIModel),
			Temperature: float32(s.Temperature),
			HTTPClient:  httpClient,
		})
	case ProviderPortkey:
		if s.PortkeyAPIKey == "" {
			return Disabled{Reason: "portkey_api_key is not set"}, provider
		}
		headers := map[string]string{"x-portkey-api-key": s.PortkeyAPIKey}
		if s.PortkeyVirtualKey != "" {
			headers["x-portkey-virtual-key"] = s.PortkeyVirtualKey
		}
		baseURL := s.PortkeyBaseURL
		if baseURL == "" {
			baseURL = DefaultPortkeyBaseURL
		}
		base = NewOpenAISummarizer(OpenAIConfig{
			Provider:    ProviderPortkey,
			APIKey:      s.PortkeyAPIKey,
			BaseURL:     baseURL,
			Model:       modelOrDefault(s.Model, DefaultPortkeyModel),
			Temperature: float32(s.Temperature),
			Headers:     headers,
			HTTPClient:  httpClient,
		})
	case ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			return Disabled{Reason: "anthropic_api_key is not set"}, provider
		}
		base = NewAnthropicSummarizer(s.AnthropicAPIKey, modelOrDefault(s.Model, DefaultAnthropicModel), s.AnthropicBaseURL, httpClient)
	case ProviderNone:
		return Disabled{Reason: "no LLM provider configured"}, provider
	default:
		return Disabled{Reason: "unknown llm_provider " + provider}, provider
	}

	if s.RequestDelay > 0 {
		return NewPaced(base, s.RequestDelay), provider
	}
	return base, provider
}

func modelOrDefault(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}
