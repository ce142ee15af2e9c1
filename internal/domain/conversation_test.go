package domain

import (
	"strings"
	"testing"
	"time"
)

func TestTranscriptRender(t *testing.T) {
	t.Parallel()

	now := time.Unix(0, 0)
	tr := Transcript{}.
		Append(RoleUser, "hi", now).
		Append(RoleTool, "Thought: Do I need to use a tool? Yes\nObservation: none", now).
		Append(RoleAgent, "Hello there!", now)

	got := tr.Render("Maria")
	want := "User: hi " + EndOfTurn + "\n" +
		"Thought: Do I need to use a tool? Yes\nObservation: none\n" +
		"Maria: Hello there! " + EndOfTurn + "\n"
	if got != want {
		t.Errorf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestTranscriptAppendDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	now := time.Unix(0, 0)
	base := Transcript{}.Append(RoleUser, "first", now)
	grown := base.Append(RoleAgent, "second", now)

	if len(base) != 1 {
		t.Errorf("base length = %d, want 1", len(base))
	}
	if len(grown) != 2 {
		t.Errorf("grown length = %d, want 2", len(grown))
	}
}

func TestLastUserMessage(t *testing.T) {
	t.Parallel()

	now := time.Unix(0, 0)
	tr := Transcript{}.
		Append(RoleUser, "first", now).
		Append(RoleAgent, "reply", now).
		Append(RoleUser, "second", now).
		Append(RoleTool, "observation", now)

	if got := tr.LastUserMessage(); got != "second" {
		t.Errorf("LastUserMessage = %q", got)
	}
	if got := (Transcript{}).LastUserMessage(); got != "" {
		t.Errorf("empty transcript LastUserMessage = %q", got)
	}
}

func TestRenderEmptyTranscript(t *testing.T) {
	t.Parallel()

	if got := (Transcript{}).Render("Maria"); got != "" {
		t.Errorf("Render = %q, want empty", got)
	}
}

func TestRenderSkipsUnknownRoles(t *testing.T) {
	t.Parallel()

	tr := Transcript{{Role: Role("system"), Text: "hidden"}}
	if strings.Contains(tr.Render("Maria"), "hidden") {
		t.Error("unknown roles must not render")
	}
}
