package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrExtract is returned when the model cannot be coaxed into producing
// parsable structured output.
var ErrExtract = errors.New("llm: extraction returned unparsable output")

const extractSystem = "You are a helpful assistant. " +
	"Return a valid directly parsable JSON object. Do not wrap it in a code " +
	"snippet or add any kind of explanation."

// Extract asks the model to answer instructions with a strict JSON object and
// unmarshals the result into out. A parse failure is retried once with a
// clarifying re-prompt; a second failure returns ErrExtract. Every tool that
// needs structured data out of free text goes through here instead of
// building its own prompt plumbing.
func Extract(ctx context.Context, c Client, instructions string, out any) error {
	req := Request{
		System:      extractSystem,
		Prompt:      instructions,
		Temperature: 0.2,
		MaxTokens:   1000,
	}

	raw, err := c.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("extraction call: %w", err)
	}
	if jsonErr := json.Unmarshal([]byte(salvageJSON(raw)), out); jsonErr == nil {
		return nil
	}

	// One retry with the broken output echoed back.
	req.Prompt = instructions +
		"\n\nYour previous answer was not valid JSON:\n" + raw +
		"\nAnswer again with only the corrected JSON object."
	raw, err = c.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("extraction retry call: %w", err)
	}
	if jsonErr := json.Unmarshal([]byte(salvageJSON(raw)), out); jsonErr != nil {
		return fmt.Errorf("%w: %s", ErrExtract, strings.TrimSpace(raw))
	}
	return nil
}

// salvageJSON strips code fences and surrounding prose, keeping the outermost
// JSON object. Models routinely decorate their answers despite instructions.
func salvageJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}
