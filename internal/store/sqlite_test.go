package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/npetros/argosales/internal/domain"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	a, err := NewSQLite(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("close archive: %v", err)
		}
	})
	return a
}

func TestAppendAndListTurns(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "I want to go to Andros", At: base},
		{Role: domain.RoleAgent, Text: "When would you like to travel?", At: base.Add(time.Second)},
		{Role: domain.RoleUser, Text: "tomorrow", At: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		if err := a.AppendTurn(ctx, "sess-a", turn); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.AppendTurn(ctx, "sess-b", domain.Turn{Role: domain.RoleUser, Text: "other session", At: base}); err != nil {
		t.Fatal(err)
	}

	got, err := a.ListTurns(ctx, "sess-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d turns, want 3", len(got))
	}
	for i, turn := range got {
		if turn.Role != turns[i].Role || turn.Text != turns[i].Text {
			t.Errorf("turn %d = %+v, want %+v", i, turn, turns[i])
		}
		if !turn.At.Equal(turns[i].At) {
			t.Errorf("turn %d time = %v, want %v", i, turn.At, turns[i].At)
		}
	}
}

func TestListTurnsUnknownSession(t *testing.T) {
	t.Parallel()

	a := newTestArchive(t)
	got, err := a.ListTurns(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d turns for unknown session", len(got))
	}
}

func TestIsSQLiteConflict(t *testing.T) {
	t.Parallel()

	if isSQLiteConflict(nil) {
		t.Error("nil should not be a conflict")
	}
	if !isSQLiteConflict(errors.New("SQLITE_BUSY: database is busy")) {
		t.Error("SQLITE_BUSY should be a conflict")
	}
	if !isSQLiteConflict(errors.New("database is locked")) {
		t.Error("locked should be a conflict")
	}
	if isSQLiteConflict(errors.New("no such table")) {
		t.Error("unrelated error flagged as conflict")
	}
}

func TestNopArchive(t *testing.T) {
	t.Parallel()

	var a Archive = NopArchive{}
	if err := a.AppendTurn(context.Background(), "x", domain.Turn{}); err != nil {
		t.Fatal(err)
	}
	turns, err := a.ListTurns(context.Background(), "x")
	if err != nil || turns != nil {
		t.Errorf("ListTurns = %v, %v", turns, err)
	}
}
