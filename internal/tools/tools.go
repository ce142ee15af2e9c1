// Package tools defines the external actions the sales agent may invoke
// mid-turn and the registry the composer resolves them through.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler runs one action: a single free-text input, a single observation
// string out. Handlers do their own fail-soft conversion for expected
// external failures; anything returned as an error is converted to an
// observation at the registry boundary.
type Handler func(ctx context.Context, input string) (string, error)

// Tool couples an action name with the description the model uses to decide
// when to invoke it.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry holds the actions available to the agent. It is populated once at
// startup and read-only afterwards, so it is safe to share across sessions
// without locking.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering the same name twice is a programming
// error.
func (r *Registry) Register(t *Tool) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("register tool: name and handler are required")
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("register tool: %q already registered", t.Name)
	}
	r.order = append(r.order, t.Name)
	r.tools[t.Name] = t
	return nil
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Describe renders the "name: description" lines embedded into the
// generation prompt.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, t := range r.List() {
		b.WriteString(t.Name + ": " + t.Description + "\n")
	}
	return b.String()
}

// Invoke runs the named tool and always returns observation text. Unknown
// names and handler errors become textual observations so a bad tool call
// can never abort the turn.
func (r *Registry) Invoke(ctx context.Context, name, input string) string {
	t, ok := r.Lookup(name)
	if !ok {
		slog.Warn("Model requested unknown tool", "tool", name)
		return fmt.Sprintf("Tool %q does not exist. Available tools: %s.",
			name, strings.Join(r.Names(), ", "))
	}
	out, err := t.Handler(ctx, input)
	if err != nil {
		slog.Warn("Tool invocation failed", "tool", name, "error", err)
		return fmt.Sprintf("The %s tool failed: %v", name, err)
	}
	return out
}
