package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultFeatureExtractionEndpoint = "https://api-inference.huggingface.co/pipeline/feature-extraction"

func init() {
	RegisterClient("huggingface", NewHuggingFaceClient)
}

// HuggingFaceClient calls a hosted feature-extraction pipeline.
type HuggingFaceClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	batchSize  int
}

// NewHuggingFaceClient creates a feature-extraction client.
func NewHuggingFaceClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewEmbeddingError(ErrCodeInvalidAPIKey, "API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultFeatureExtractionEndpoint
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}

	return &HuggingFaceClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		batchSize:  batchSize,
	}, nil
}

// Name returns the model name.
func (c *HuggingFaceClient) Name() string {
	return c.model
}

// Embed produces the vector for one text.
func (c *HuggingFaceClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewEmbeddingError(ErrCodeEmptyText, "text cannot be empty")
	}

	vectors, err := c.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, NewEmbeddingError(ErrCodeServerError, "no vector in response")
	}
	return vectors[0], nil
}

// EmbedBatch produces vectors for several texts, respecting the batch
// size limit per request.
func (c *HuggingFaceClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, NewEmbeddingError(ErrCodeEmptyText, "texts cannot be empty")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.request(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, NewEmbeddingError(ErrCodeServerError,
				fmt.Sprintf("vector count mismatch: sent %d texts, got %d vectors", end-start, len(batch)))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// request sends one feature-extraction call with bounded retries.
func (c *HuggingFaceClient) request(ctx context.Context, inputs []string) ([][]float32, error) {
	jsonData, err := json.Marshal(map[string]any{
		"inputs": inputs,
	})
	if err != nil {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	url := c.baseURL
	if c.model != "" {
		url = strings.TrimRight(c.baseURL, "/") + "/" + c.model
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewEmbeddingError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return nil, NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEmbeddingError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var vectors [][]float32
	if err := json.Unmarshal(body, &vectors); err != nil {
		return nil, NewEmbeddingError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", err))
	}
	return vectors, nil
}
