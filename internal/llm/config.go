package llm

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	// Provider is one of gemini, openai, anthropic or mock.
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Retry    RetryConfig
}

func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Timeout:  60 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
		},
	}
}

// New builds the configured provider wrapped as retry -> instrumentation -> provider.
func New(ctx context.Context, c Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch c.Provider {
	case "gemini":
		p, err = NewGemini(ctx, c.APIKey, c.Model)
	case "openai":
		p, err = NewOpenAI(c.APIKey, c.Model, c.BaseURL)
	case "anthropic":
		p, err = NewAnthropic(c.APIKey, c.Model)
	case "mock":
		p = NewMock()
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(WithInstrumentation(p, c.Provider), c.Retry), nil
}
