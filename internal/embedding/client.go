// Package embedding turns fragment text into float vectors through a
// remote feature-extraction model. The capability is optional: when no
// client is configured, or any call fails, retrieval falls back to
// lexical scoring and ingestion proceeds without vectors.
package embedding

import (
	"context"
	"time"
)

// Client is the embedding model interface.
type Client interface {
	// Embed produces the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch produces vectors for several texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name returns the model name.
	Name() string
}

// Config holds client settings.
type Config struct {
	APIKey     string        // API key
	BaseURL    string        // model endpoint
	Model      string        // model name
	Timeout    time.Duration // request timeout
	MaxRetries int           // retry count
	BatchSize  int           // texts per batch request
}

// DefaultConfig returns the standard client settings.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    defaultFeatureExtractionEndpoint,
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		BatchSize:  16,
	}
}

// Option mutates the client configuration.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithBaseURL sets the model endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the retry count.
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithBatchSize sets how many texts one batch request carries.
func WithBatchSize(size int) Option {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// NewConfig applies options on top of the defaults.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Factory builds an embedding client.
type Factory func(opts ...Option) (Client, error)

var clientFactories = make(map[string]Factory)

// RegisterClient registers a client factory under a name.
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient creates the named client.
func NewClient(name string, opts ...Option) (Client, error) {
	factory, exists := clientFactories[name]
	if !exists {
		return nil, NewEmbeddingError(
			ErrCodeInvalidRequest,
			"embedding client type not registered: "+name)
	}
	return factory(opts...)
}
