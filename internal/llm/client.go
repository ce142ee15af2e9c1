// Package llm abstracts the language-model backends behind a single
// generation capability. Two providers are supported: OpenAI-style chat
// completions and Ollama, which speaks its own request/response envelope.
// The provider is chosen by configuration, never by inspecting the model
// name.
package llm

import (
	"context"
	"errors"
)

// Providers selectable through configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ErrNoOutput is returned when the backend answered but produced no usable
// completion text.
var ErrNoOutput = errors.New("llm: backend returned no output")

// Request carries one generation call. System may be empty; Stop sequences
// and MaxTokens are optional (zero means backend default).
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	Stop        []string
}

// TokenFunc receives incremental completion tokens during streaming.
type TokenFunc func(token string)

// Client is the generation capability the agent core depends on.
type Client interface {
	// Generate runs one completion and returns the full text.
	Generate(ctx context.Context, req Request) (string, error)

	// GenerateStream runs one completion, forwarding tokens to fn as they
	// arrive, and returns the accumulated text. fn may be nil.
	GenerateStream(ctx context.Context, req Request, fn TokenFunc) (string, error)
}
