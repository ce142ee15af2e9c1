package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/llm"
	"github.com/npetros/argosales/internal/stage"
)

// scriptedLLM plays back canned outputs in order and records every request,
// so tests can assert on both the decisions made and the prompts sent.
type scriptedLLM struct {
	mu       sync.Mutex
	outputs  []string
	requests []llm.Request
	calls    int

	// errOnCall makes that call (1-based) fail; 0 disables.
	errOnCall int
	err       error
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	if s.errOnCall != 0 && s.calls == s.errOnCall {
		return "", s.err
	}
	if len(s.outputs) == 0 {
		return "", errors.New("scripted llm: out of outputs")
	}
	out := s.outputs[0]
	if len(s.outputs) > 1 {
		s.outputs = s.outputs[1:]
	}
	return out, nil
}

func (s *scriptedLLM) GenerateStream(ctx context.Context, req llm.Request, fn llm.TokenFunc) (string, error) {
	out, err := s.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	fn(out)
	return out, nil
}

func userTurn(text string) domain.Transcript {
	return domain.Transcript{}.Append(domain.RoleUser, text, time.Unix(0, 0))
}

func TestClassifyEmptyTranscript(t *testing.T) {
	t.Parallel()

	backend := &scriptedLLM{}
	c := NewClassifier(backend, "Maria")

	got, err := c.Classify(context.Background(), nil, stage.Introduction)
	if err != nil {
		t.Fatal(err)
	}
	if got != stage.Introduction {
		t.Errorf("stage = %q, want %q", got, stage.Introduction)
	}
	if backend.calls != 0 {
		t.Error("classifier called the model for an empty transcript")
	}
}

func TestClassifyTerminalIsSticky(t *testing.T) {
	t.Parallel()

	backend := &scriptedLLM{outputs: []string{"3"}}
	c := NewClassifier(backend, "Maria")

	got, err := c.Classify(context.Background(), userTurn("hello again"), stage.EndConversation)
	if err != nil {
		t.Fatal(err)
	}
	if got != stage.EndConversation {
		t.Errorf("stage = %q, want terminal to stick", got)
	}
	if backend.calls != 0 {
		t.Error("classifier called the model for a terminal session")
	}
}

func TestClassifyFollowsModel(t *testing.T) {
	t.Parallel()

	backend := &scriptedLLM{outputs: []string{"7"}}
	c := NewClassifier(backend, "Maria")

	got, err := c.Classify(context.Background(), userTurn("how much does it cost?"), stage.NeedsAnalysis)
	if err != nil {
		t.Fatal(err)
	}
	if got != stage.Close {
		t.Errorf("stage = %q, want %q", got, stage.Close)
	}
	if backend.requests[0].Temperature != 0 {
		t.Errorf("classifier temperature = %v, want 0", backend.requests[0].Temperature)
	}
}

func TestClassifyHoldsOnGarbage(t *testing.T) {
	t.Parallel()

	backend := &scriptedLLM{outputs: []string{"the next stage should be value proposition"}}
	c := NewClassifier(backend, "Maria")

	got, err := c.Classify(context.Background(), userTurn("tell me more"), stage.Qualification)
	if err != nil {
		t.Fatal(err)
	}
	if got != stage.Qualification {
		t.Errorf("stage = %q, want to hold %q", got, stage.Qualification)
	}
}

func TestClassifyStepBackGated(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		current string
		want    string
	}{
		{"too early", stage.ValueProposition, stage.ValueProposition},
		{"from objection handling", stage.ObjectionHandling, stage.StepBack},
		{"from close", stage.Close, stage.StepBack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := &scriptedLLM{outputs: []string{"8"}}
			c := NewClassifier(backend, "Maria")

			got, err := c.Classify(context.Background(), userTurn("actually we are 4 people, not 2"), tc.current)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("stage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyPropagatesBackendError(t *testing.T) {
	t.Parallel()

	backend := &scriptedLLM{errOnCall: 1, err: errors.New("backend down")}
	c := NewClassifier(backend, "Maria")

	if _, err := c.Classify(context.Background(), userTurn("hi"), stage.Introduction); err == nil {
		t.Fatal("expected error")
	}
}
