package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/llm"
	"github.com/npetros/argosales/internal/session"
	"github.com/npetros/argosales/internal/stage"
	"github.com/npetros/argosales/internal/tools"
)

// DefaultMaxHops bounds the number of chained tool invocations in a single
// turn before the composer gives up and answers without the tool result.
const DefaultMaxHops = 5

const fallbackReply = "I'm sorry, I wasn't able to complete that just now. Could you rephrase your request?"

// Composer produces the agent's reply for one user message. It runs the
// stage classifier, then the generation loop with optional tool use, and
// commits the new turns to the session only when the whole turn succeeds.
type Composer struct {
	client     llm.Client
	registry   *tools.Registry
	classifier *Classifier
	persona    Persona
	maxHops    int
	now        func() time.Time
}

func NewComposer(client llm.Client, registry *tools.Registry, persona Persona, maxHops int) *Composer {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	return &Composer{
		client:     client,
		registry:   registry,
		classifier: NewClassifier(client, persona.SalespersonName),
		persona:    persona,
		maxHops:    maxHops,
		now:        time.Now,
	}
}

// Compose handles one user message for the given session. The caller must
// hold the session lock. On error the session is left exactly as it was.
func (c *Composer) Compose(ctx context.Context, sess *session.Session, userMessage string) (string, error) {
	if stage.IsTerminal(sess.Stage) {
		return "", fmt.Errorf("session %s: conversation has ended", sess.ID)
	}

	// Work on a scratch copy so a failed turn never leaves a half-written
	// transcript behind.
	work := sess.Transcript.Append(domain.RoleUser, userMessage, c.now())

	next, err := c.classifier.Classify(ctx, work, sess.Stage)
	if err != nil {
		return "", fmt.Errorf("classify stage: %w", err)
	}

	useTools := sess.UseTools && c.registry != nil && len(c.registry.Names()) > 0

	reply := ""
	for hop := 0; hop < c.maxHops; hop++ {
		raw, err := c.client.Generate(ctx, llm.Request{
			Prompt:      generationPrompt(c.persona, next, c.registry, useTools, work),
			Temperature: 0.7,
			MaxTokens:   1500,
			Stop:        []string{"\nObservation:"},
		})
		if err != nil {
			return "", fmt.Errorf("generate reply: %w", err)
		}

		d := ParseDecision(raw, c.persona.SalespersonName)

		switch {
		case d.Tool != nil && useTools:
			obs := c.registry.Invoke(ctx, d.Tool.Name, d.Tool.Input)
			work = work.Append(domain.RoleTool, toolRecord(d, obs), c.now())

		case d.Tool != nil:
			// Tools are disabled for this session; nudge the model to
			// answer directly instead of looping.
			work = work.Append(domain.RoleTool, toolRecord(d, "Tools are not available in this conversation. Answer the user directly."), c.now())

		case d.Malformed:
			slog.Warn("malformed tool request, asking model to retry", "session", sess.ID, "hop", hop)
			work = work.Append(domain.RoleTool,
				"Observation: Your last output requested a tool but did not follow the Action / Action Input format. Either use the format exactly or answer the user directly.",
				c.now())

		default:
			reply = d.Final
		}
		if reply != "" {
			break
		}
	}

	if reply == "" {
		slog.Warn("tool loop exhausted without a final reply", "session", sess.ID, "max_hops", c.maxHops)
		reply = fallbackReply
	}

	sess.Transcript = work.Append(domain.RoleAgent, reply, c.now())
	sess.Stage = next
	return reply, nil
}

// ComposeStream behaves like Compose but forwards tokens to fn as they are
// produced. Tool-using turns cannot stream token by token because the
// output has to be parsed for actions first; those turns are composed fully
// and delivered as a single chunk.
func (c *Composer) ComposeStream(ctx context.Context, sess *session.Session, userMessage string, fn llm.TokenFunc) (string, error) {
	useTools := sess.UseTools && c.registry != nil && len(c.registry.Names()) > 0
	if useTools {
		reply, err := c.Compose(ctx, sess, userMessage)
		if err != nil {
			return "", err
		}
		fn(reply)
		return reply, nil
	}

	if stage.IsTerminal(sess.Stage) {
		return "", fmt.Errorf("session %s: conversation has ended", sess.ID)
	}

	work := sess.Transcript.Append(domain.RoleUser, userMessage, c.now())

	next, err := c.classifier.Classify(ctx, work, sess.Stage)
	if err != nil {
		return "", fmt.Errorf("classify stage: %w", err)
	}

	raw, err := c.client.GenerateStream(ctx, llm.Request{
		Prompt:      generationPrompt(c.persona, next, nil, false, work),
		Temperature: 0.7,
		MaxTokens:   1500,
		Stop:        []string{domain.EndOfTurn},
	}, fn)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	reply := cleanFinal(raw, c.persona.SalespersonName)
	if reply == "" {
		reply = fallbackReply
	}

	sess.Transcript = work.Append(domain.RoleAgent, reply, c.now())
	sess.Stage = next
	return reply, nil
}

// toolRecord renders one tool hop in the exact grammar the model was shown,
// so the next generation pass sees its own action and the observation.
func toolRecord(d Decision, observation string) string {
	var b strings.Builder
	b.WriteString("Thought: Do I need to use a tool? Yes")
	if d.Tool != nil {
		b.WriteString("\nAction: " + d.Tool.Name)
		b.WriteString("\nAction Input: " + d.Tool.Input)
	}
	b.WriteString("\nObservation: " + observation)
	return b.String()
}
