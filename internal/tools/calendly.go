package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CalendlyConfig configures the meeting-invitation action.
type CalendlyConfig struct {
	APIKey        string
	EventTypeUUID string
	// BaseURL defaults to the public Calendly API; tests point it at a
	// local server.
	BaseURL string
	Timeout time.Duration
}

const calendlyAPI = "https://api.calendly.com"

// NewCalendlyTool builds the SendCalendlyInvitation action: request a
// single-use scheduling link for the configured event type.
func NewCalendlyTool(cfg CalendlyConfig) *Tool {
	if cfg.BaseURL == "" {
		cfg.BaseURL = calendlyAPI
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Tool{
		Name: "SendCalendlyInvitation",
		Description: "Useful for when you need to create an invite for a personal meeting. " +
			"Sends a calendly invitation based on the query input.",
		Handler: func(ctx context.Context, _ string) (string, error) {
			payload, err := json.Marshal(map[string]any{
				"max_event_count": 1,
				"owner":           fmt.Sprintf("%s/event_types/%s", calendlyAPI, cfg.EventTypeUUID),
				"owner_type":      "EventType",
			})
			if err != nil {
				return "", fmt.Errorf("marshal scheduling payload: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				cfg.BaseURL+"/scheduling_links", bytes.NewReader(payload))
			if err != nil {
				return "", fmt.Errorf("build scheduling request: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				return "Failed to create Calendly link.", nil
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return "Failed to create Calendly link.", nil
			}

			var out struct {
				Resource struct {
					BookingURL string `json:"booking_url"`
				} `json:"resource"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return "Failed to create Calendly link.", nil
			}
			return "url: " + out.Resource.BookingURL, nil
		},
	}
}
