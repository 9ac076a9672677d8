package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Oracle turns a system prompt and a delimiter-joined batch of source
// strings into a delimiter-joined batch of translations.
type Oracle interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// ---------------------------------------------------------------------------
// OpenAI chat completions
// ---------------------------------------------------------------------------

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4o

// DefaultTemperature keeps translations close to the source wording.
const DefaultTemperature = 0.3

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	// APIKey is sent as a bearer token.
	APIKey string
	// BaseURL overrides the API base URL (e.g. "https://api.groq.com/openai/v1").
	BaseURL string
	// Model is the model identifier.
	Model string
	// Temperature is the sampling temperature.
	Temperature float64
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout (0 = 120s).
	Timeout time.Duration
}

// OpenAIOracle calls the chat completions API once per batch. Errors are
// returned as-is; there is no retry.
type OpenAIOracle struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIOracle builds an oracle from cfg.
func NewOpenAIOracle(cfg OpenAIConfig) *OpenAIOracle {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	clientCfg.HTTPClient = makeHTTPClient(cfg.Proxy, timeout)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIOracle{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: float32(cfg.Temperature),
	}
}

// Model returns the model identifier requests are sent to.
func (o *OpenAIOracle) Model() string {
	return o.model
}

// Complete implements Oracle.
func (o *OpenAIOracle) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("API returned status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// makeHTTPClient returns a client honouring an explicit proxy URL, or
// HTTP_PROXY/HTTPS_PROXY when none is given.
func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
