package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/llm"
	"github.com/npetros/argosales/internal/stage"
)

// Classifier picks the conversation stage for the next turn. The model
// proposes a stage; the policy rules below have the final say, so a noisy
// or invalid model answer can never move the conversation somewhere the
// state machine forbids.
type Classifier struct {
	client llm.Client
	name   string
}

func NewClassifier(client llm.Client, agentName string) *Classifier {
	return &Classifier{client: client, name: agentName}
}

// Classify returns the stage to use for the next agent turn. The terminal
// stage is sticky: once a session reaches it the classifier never runs.
func (c *Classifier) Classify(ctx context.Context, transcript domain.Transcript, current string) (string, error) {
	if stage.IsTerminal(current) {
		return current, nil
	}
	if !stage.Valid(current) {
		current = stage.Default()
	}
	if len(transcript) == 0 {
		return stage.Default(), nil
	}

	out, err := c.client.Generate(ctx, llm.Request{
		Prompt:      classifierPrompt(transcript, c.name, current),
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}

	next, ok := firstStageDigit(out)
	if !ok {
		slog.Warn("stage classifier returned no stage number, holding", "current", current, "raw", out)
		return current, nil
	}
	return applyStagePolicy(current, next), nil
}

// firstStageDigit scans the model output for the first character in 1..9.
func firstStageDigit(out string) (string, bool) {
	for _, r := range strings.TrimSpace(out) {
		if r >= '1' && r <= '9' {
			return string(r), true
		}
	}
	return "", false
}

// applyStagePolicy enforces the transitions the model is not trusted with.
func applyStagePolicy(current, next string) string {
	if !stage.Valid(next) {
		return current
	}
	if next == stage.StepBack && !stage.CanStepBack(current) {
		return current
	}
	return next
}
