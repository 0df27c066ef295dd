package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://api.perplexity.ai/chat/completions"

func init() {
	RegisterClient("perplexity", NewPerplexityClient)
}

// PerplexityClient answers questions through the Perplexity chat
// completions API, walking the configured model list on failure.
type PerplexityClient struct {
	apiKey      string
	baseURL     string
	models      []string
	httpClient  *http.Client
	maxRetries  int
	maxTokens   int
	temperature float32
	logger      *logrus.Logger
}

// NewPerplexityClient creates a Perplexity-backed knowledge client.
func NewPerplexityClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewKnowledgeError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}
	if len(cfg.Models) == 0 {
		return nil, NewKnowledgeError(ErrCodeInvalidRequest, "model list cannot be empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultEndpoint
	}

	return &PerplexityClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		models:      cfg.Models,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logrus.StandardLogger(),
	}, nil
}

// Name returns the client name.
func (c *PerplexityClient) Name() string {
	return "perplexity"
}

// Lookup tries every configured model in order and returns the first
// non-empty answer. Per-model failures are logged, not surfaced; only
// total exhaustion produces an error.
func (c *PerplexityClient) Lookup(ctx context.Context, question, language string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", NewKnowledgeError(ErrCodeEmptyQuestion, ErrMsgEmptyQuestion)
	}

	messages := []Message{
		{Role: RoleSystem, Content: systemPromptFor(language)},
		{Role: RoleUser, Content: question},
	}

	var lastErr error
	for _, model := range c.models {
		answer, err := c.askModel(ctx, model, messages)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"model": model,
				"error": err.Error(),
			}).Warn("Knowledge lookup model failed, trying next")
			lastErr = err
			continue
		}
		if answer == "" {
			lastErr = NewKnowledgeError(ErrCodeEmptyAnswer, ErrMsgEmptyAnswer)
			continue
		}
		return answer, nil
	}

	if lastErr != nil {
		return "", WrapError(fmt.Errorf("%s: %v", ErrMsgAllModelsFailed, lastErr), ErrCodeAllModelsFailed)
	}
	return "", NewKnowledgeError(ErrCodeAllModelsFailed, ErrMsgAllModelsFailed)
}

// askModel sends one chat completion request with bounded retries on
// transport and server errors.
func (c *PerplexityClient) askModel(ctx context.Context, model string, messages []Message) (string, error) {
	jsonData, err := json.Marshal(&chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", NewKnowledgeError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// exponential backoff between attempts
			select {
			case <-ctx.Done():
				return "", NewKnowledgeError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
		if err != nil {
			return "", NewKnowledgeError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err == nil && resp.StatusCode < 500 {
			break
		}
		if err != nil {
			lastErr = err
			resp = nil
		} else {
			lastErr = fmt.Errorf("server status %d", resp.StatusCode)
			resp.Body.Close()
			resp = nil
		}
	}

	if resp == nil {
		return "", NewKnowledgeError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewKnowledgeError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", NewKnowledgeError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", NewKnowledgeError(ErrCodeRateLimited, "rate limit exceeded")
	case resp.StatusCode != http.StatusOK:
		return "", NewKnowledgeError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", NewKnowledgeError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", err))
	}
	if chatResp.Error != nil {
		return "", NewKnowledgeError(ErrCodeServerError,
			fmt.Sprintf("API error: %s (%s)", chatResp.Error.Message, chatResp.Error.Type))
	}
	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
