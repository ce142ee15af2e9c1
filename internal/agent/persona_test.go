package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePersonaFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPersonaPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writePersonaFile(t, `{"salesperson_name": "Nikos", "company_name": "Island Lines"}`)
	p, err := LoadPersona(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.SalespersonName != "Nikos" {
		t.Errorf("name = %q", p.SalespersonName)
	}
	if p.CompanyName != "Island Lines" {
		t.Errorf("company = %q", p.CompanyName)
	}
	if p.ConversationType != "chat" {
		t.Errorf("conversation type lost its default: %q", p.ConversationType)
	}
}

func TestLoadPersonaRequiresName(t *testing.T) {
	t.Parallel()

	path := writePersonaFile(t, `{"salesperson_name": "", "company_name": "Island Lines"}`)
	if _, err := LoadPersona(path); err == nil || !strings.Contains(err.Error(), "salesperson_name") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadPersona(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerationPromptIncludesStageAndTools(t *testing.T) {
	t.Parallel()

	p := DefaultPersona()
	prompt := generationPrompt(p, "4", nil, false, nil)
	if !strings.Contains(prompt, "Travel plan presentation") {
		t.Error("prompt missing active stage description")
	}
	if strings.Contains(prompt, "Action Input") {
		t.Error("tool protocol leaked into a tool-free prompt")
	}
	if !strings.Contains(prompt, p.SalespersonName+":") {
		t.Error("prompt missing agent name scaffold")
	}
}
