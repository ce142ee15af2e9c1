// Package domain holds the core conversation types shared across the agent.
package domain

import (
	"strings"
	"time"
)

// EndOfTurn terminates every rendered user/agent line in the prompt so the
// model knows where a speaker stopped.
const EndOfTurn = "<END_OF_TURN>"

// Role identifies the speaker of a transcript turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	// RoleTool marks internal Thought/Action/Observation records folded
	// into the transcript between a user turn and the agent's final reply.
	RoleTool Role = "tool"
)

// Turn is a single transcript entry. Turns are never mutated or reordered
// after append.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// Transcript is an append-only, ordered sequence of turns, oldest first.
// It is owned exclusively by the session it belongs to and is not safe for
// concurrent append.
type Transcript []Turn

// Append returns the transcript with a new turn added.
func (t Transcript) Append(role Role, text string, at time.Time) Transcript {
	return append(t, Turn{Role: role, Text: text, At: at})
}

// Render formats the transcript the way the generation prompt expects it:
// one line per user/agent turn terminated with EndOfTurn, tool records
// verbatim. agentName labels the agent's own lines.
func (t Transcript) Render(agentName string) string {
	var b strings.Builder
	for _, turn := range t {
		switch turn.Role {
		case RoleUser:
			b.WriteString("User: " + turn.Text + " " + EndOfTurn + "\n")
		case RoleAgent:
			b.WriteString(agentName + ": " + turn.Text + " " + EndOfTurn + "\n")
		case RoleTool:
			b.WriteString(turn.Text + "\n")
		}
	}
	return b.String()
}

// LastUserMessage returns the text of the most recent user turn, or "".
func (t Transcript) LastUserMessage() string {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleUser {
			return t[i].Text
		}
	}
	return ""
}
