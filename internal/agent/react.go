package agent

import (
	"regexp"
	"strings"

	"github.com/npetros/argosales/internal/domain"
)

// Decision is the parsed outcome of one generation: either a tool call or a
// final user-facing reply. The composer only ever works with this tagged
// form, never with the raw model text.
type Decision struct {
	Thought string

	// Tool is set when the model requested an action.
	Tool *ToolCall

	// Final is the user-facing reply when no tool was requested.
	Final string

	// Malformed marks output that announced a tool call but did not supply
	// a parseable action. The composer feeds a corrective observation back
	// instead of surfacing such text to the prospect.
	Malformed bool
}

// ToolCall names a registry action and its single free-text input.
type ToolCall struct {
	Name  string
	Input string
}

// The emission grammar is line-oriented free text; match generously on
// whitespace and case.
var (
	toolMarkerPattern  = regexp.MustCompile(`(?i)Do I need to use a tool\?\s*(Yes|No)`)
	thoughtPattern     = regexp.MustCompile(`(?i)Thought\s*:\s*(.*)`)
	actionPattern      = regexp.MustCompile(`(?im)^\s*Action\s*:\s*(\S+)\s*$`)
	actionInputPattern = regexp.MustCompile(`(?im)^\s*Action\s+Input\s*:\s*(.+)$`)
)

// ParseDecision extracts the tool-or-final decision from raw model output.
// agentName strips the "Name:" prefix the prompt asks the model to emit on
// final replies.
func ParseDecision(raw, agentName string) Decision {
	d := Decision{}

	if m := thoughtPattern.FindStringSubmatch(raw); len(m) > 1 {
		d.Thought = strings.TrimSpace(m[1])
	}

	wantsTool := false
	if m := toolMarkerPattern.FindStringSubmatch(raw); len(m) > 1 {
		wantsTool = strings.EqualFold(m[1], "Yes")
	}

	if m := actionPattern.FindStringSubmatch(raw); len(m) > 1 {
		call := &ToolCall{Name: strings.TrimSpace(m[1])}
		if im := actionInputPattern.FindStringSubmatch(raw); len(im) > 1 {
			call.Input = strings.TrimSpace(im[1])
		}
		d.Tool = call
		return d
	}

	if wantsTool {
		// Announced a tool but never named one.
		d.Malformed = true
		return d
	}

	d.Final = cleanFinal(raw, agentName)
	return d
}

// cleanFinal strips the emission scaffolding (thought lines, name prefix,
// end-of-turn marker) from a final reply.
func cleanFinal(raw, agentName string) string {
	text := raw
	// Drop everything through the tool marker line, if present.
	if loc := toolMarkerPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "thought:") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = strings.ReplaceAll(text, domain.EndOfTurn, "")
	text = strings.TrimSpace(text)
	if agentName != "" {
		text = strings.TrimPrefix(text, agentName+":")
	}
	return strings.TrimSpace(text)
}
