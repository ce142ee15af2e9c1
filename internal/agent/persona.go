// Package agent implements the staged sales dialogue: stage classification,
// prompt construction, tool-call parsing and the per-turn compose loop.
package agent

import (
	"encoding/json"
	"fmt"
	"os"
)

// Persona holds the identity fields embedded into every generation prompt.
// It is loaded once at startup from a JSON setup file.
type Persona struct {
	SalespersonName     string `json:"salesperson_name"`
	SalespersonRole     string `json:"salesperson_role"`
	CompanyName         string `json:"company_name"`
	CompanyBusiness     string `json:"company_business"`
	CompanyValues       string `json:"company_values"`
	ConversationPurpose string `json:"conversation_purpose"`
	ConversationType    string `json:"conversation_type"`
}

// DefaultPersona is used when no setup file is configured.
func DefaultPersona() Persona {
	return Persona{
		SalespersonName: "Maria",
		SalespersonRole: "Travel Sales Representative",
		CompanyName:     "Argo Travel",
		CompanyBusiness: "Argo Travel designs island-hopping trips in Greece and books the ferries, hotels and activities that go with them.",
		CompanyValues: "Our mission is to take the friction out of Greek island travel and make " +
			"every trip feel personally planned.",
		ConversationPurpose: "find out whether they are planning a trip and help them book the ideal itinerary.",
		ConversationType:    "chat",
	}
}

// LoadPersona reads a persona setup file. Fields missing from the file keep
// their defaults so a partial setup file still yields a usable persona.
func LoadPersona(path string) (Persona, error) {
	p := DefaultPersona()
	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("parse persona file %s: %w", path, err)
	}
	if p.SalespersonName == "" {
		return Persona{}, fmt.Errorf("persona file %s: salesperson_name is required", path)
	}
	return p, nil
}
