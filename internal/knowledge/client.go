// Package knowledge looks up answers from an external knowledge
// service when the local corpus has nothing to offer. The lookup walks
// an ordered model list, trying the next model only after the previous
// one fails.
package knowledge

import (
	"context"
	"time"
)

// Client is the external knowledge lookup interface.
type Client interface {
	// Lookup answers a free-text question in the given language.
	Lookup(ctx context.Context, question, language string) (string, error)

	// Name returns the client name.
	Name() string
}

// Config holds client settings.
type Config struct {
	APIKey      string        // API key
	BaseURL     string        // chat completions endpoint
	Models      []string      // ordered fallback model list
	Timeout     time.Duration // per-request timeout
	MaxRetries  int           // retries per model before moving on
	MaxTokens   int           // answer length cap
	Temperature float32       // sampling temperature
}

// DefaultConfig returns the standard client settings.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     defaultEndpoint,
		Models:      append([]string(nil), DefaultModels...),
		Timeout:     30 * time.Second,
		MaxRetries:  2,
		MaxTokens:   500,
		Temperature: 0.2,
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

// WithBaseURL sets the endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModels sets the ordered fallback model list.
func WithModels(models []string) Option {
	return func(c *Config) {
		if len(models) > 0 {
			c.Models = models
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the retry count per model.
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithMaxTokens sets the answer length cap.
func WithMaxTokens(tokens int) Option {
	return func(c *Config) {
		c.MaxTokens = tokens
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Temperature = temp
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

// Factory builds a knowledge client.
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
		return nil, NewKnowledgeError(
			ErrCodeInvalidRequest,
			"knowledge client type not registered: "+name)
	}
	return factory(opts...)
}
