package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/draftline/draftline/internal/domain"
	"github.com/go-resty/resty/v2"
)

// Generator is the single-call interface to the generative backend. The
// orchestrator treats it as opaque: slow, possibly failing, one call per item.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Model() string
}

// GenerateRequest carries the prompt context for one generation call.
type GenerateRequest struct {
	System string
	Prompt string
}

// LLMClient generates short-form text through an OpenAI-compatible chat
// completions endpoint.
type LLMClient struct {
	client      *resty.Client
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
}

// LLMConfig holds configuration for the LLM client.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewLLMClient creates a new LLM client.
// Parameters:
//   - cfg: client configuration including model, API key, and budget.
// Returns:
//   - *LLMClient: initialized client wrapper.
func NewLLMClient(cfg *LLMConfig) *LLMClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	// Default to OpenAI compatible endpoint if not specified
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	endpoint := strings.TrimSuffix(baseURL, "/") + "/chat/completions"

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.9
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 220
	}

	return &LLMClient{
		client:      client,
		model:       cfg.Model,
		endpoint:    endpoint,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Model returns the model name being used.
func (c *LLMClient) Model() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate performs one generation call and returns the cleaned text.
// Backend errors, timeouts, and malformed responses all surface as a
// *domain.GenerationError carrying the underlying cause.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: prompt context for the call.
// Returns:
//   - string: generated text with any wrapping quotes stripped.
//   - error: non-nil if the call fails.
func (c *LLMClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("failed to call LLM API: %w", err)}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", &domain.GenerationError{Err: fmt.Errorf("LLM API returned error: %s", errorMsg)}
	}

	if resp.Error != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("LLM API error: %s", resp.Error.Message)}
	}

	if len(resp.Choices) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("no choices in response (status: %d)", httpResp.StatusCode())}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &domain.GenerationError{Err: fmt.Errorf("empty completion from LLM API")}
	}

	return stripWrappingQuotes(text), nil
}

// stripWrappingQuotes removes a single matching pair of quotation marks when
// they span the entire text. Partial quoting is left unchanged; models often
// wrap short-form answers in quotes they were never asked for.
func stripWrappingQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	pairs := [][2]string{
		{`"`, `"`},
		{"'", "'"},
		{"“", "”"},
		{"‘", "’"},
	}
	for _, p := range pairs {
		open, shut := p[0], p[1]
		if strings.HasPrefix(s, open) && strings.HasSuffix(s, shut) {
			inner := s[len(open) : len(s)-len(shut)]
			// Only strip when the leading quote closes at the very end,
			// not somewhere in the middle ("Hello "world"" stays intact,
			// and so does “a” and “b” with two separate pairs).
			if strings.Contains(inner, open) || strings.Contains(inner, shut) {
				continue
			}
			return inner
		}
	}
	return s
}
