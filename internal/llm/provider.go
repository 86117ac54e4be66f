package llm

import (
	"context"
	"fmt"
)

// NewFromEnv builds a Client for the configured provider. Supported
// providers: "gemini" (default), "groq", "fake".
func NewFromEnv(ctx context.Context, provider, apiKey, model string) (Client, error) {
	switch provider {
	case "", "gemini":
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return NewGeminiClient(ctx, apiKey, model)
	case "groq":
		if model == "" {
			model = "llama-3.3-70b-versatile"
		}
		return NewGroqClient(apiKey, model)
	case "fake":
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
