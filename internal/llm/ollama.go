package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaClient implements Client against a local Ollama server. Ollama uses
// its own wire envelope (chunked ChatResponse callbacks instead of a choices
// array), which stays entirely inside this file.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient creates an Ollama-backed client. host is the server base
// URL, e.g. "http://localhost:11434".
func NewOllamaClient(host, model string) (*OllamaClient, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}
	return &OllamaClient{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

// Model returns the configured model identifier.
func (c *OllamaClient) Model() string {
	return c.model
}

func (c *OllamaClient) chat(ctx context.Context, req Request, stream bool, fn TokenFunc) (string, error) {
	messages := make([]api.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(req.Stop) > 0 {
		options["stop"] = req.Stop
	}

	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var text string
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			text += resp.Message.Content
			if fn != nil {
				fn(resp.Message.Content)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if text == "" {
		return "", ErrNoOutput
	}
	return text, nil
}

// Generate runs one completion and returns the full text.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	return c.chat(ctx, req, false, nil)
}

// GenerateStream streams a completion, forwarding each chunk to fn.
func (c *OllamaClient) GenerateStream(ctx context.Context, req Request, fn TokenFunc) (string, error) {
	return c.chat(ctx, req, true, fn)
}
