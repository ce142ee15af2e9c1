package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/npetros/argosales/internal/booking"
	"github.com/npetros/argosales/internal/llm"
)

// tripInfo is the structured trip request extracted from free text.
type tripInfo struct {
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Passengers    int    `json:"passengers"`
	Vehicles      int    `json:"vehicles"`
	Pets          int    `json:"pets"`
}

const tripExtractionPrompt = `You are a helpful assistant that extracts trip information from user's queries.

Extract the following information from the user's query:
- departureDate (format YYYY-MM-DD)
- departureTime (if specified, in HH:MM format)
- origin (city or port name)
- destination (city or port name)
- passengers (number)
- vehicles (number)
- pets (number)

If any of the information is not specified, use default values:
- departureDate: %s
- departureTime: empty string
- origin: 'Rafina'
- destination: 'Andros'
- passengers: 1
- vehicles: 0
- pets: 0

Return the result as a JSON object with exactly the keys departureDate,
departureTime, origin, destination, passengers, vehicles, pets. Numbers must
be JSON numbers, not strings.

User's query: "%s"`

// NewTripSearchTool builds the EndpointFetch action: extract structured trip
// parameters from the query, search the booking service, and return the flat
// trip listings. Every failure mode yields a human-readable diagnostic
// string rather than an error — the model phrases it to the prospect.
func NewTripSearchTool(client llm.Client, search *booking.Client, now func() time.Time) *Tool {
	if now == nil {
		now = time.Now
	}
	return &Tool{
		Name: "EndpointFetch",
		Description: "Fetch ferry trip information based on user request. " +
			"Input should include departure date, origin, destination, number of passengers, etc.",
		Handler: func(ctx context.Context, input string) (string, error) {
			today := now().Format("2006-01-02")

			var info tripInfo
			err := llm.Extract(ctx, client, fmt.Sprintf(tripExtractionPrompt, today, input), &info)
			if err != nil {
				return "Could not extract trip information from query.", nil
			}
			applyTripDefaults(&info, today)

			query := booking.TripQuery{
				DepartureDate:       info.DepartureDate,
				DepartureTime:       info.DepartureTime,
				OriginIDOrCode:      booking.PortCode(info.Origin),
				DestinationIDOrCode: booking.PortCode(info.Destination),
				Passengers:          info.Passengers,
				Vehicles:            info.Vehicles,
				Pets:                info.Pets,
			}

			trips, err := search.SearchTrips(ctx, query)
			if err != nil {
				return "Failed to fetch trips due to a network error.", nil
			}
			if len(trips) == 0 {
				return "No trips found for the given query.", nil
			}

			out, err := json.MarshalIndent(map[string][]booking.Trip{"trips": trips}, "", "  ")
			if err != nil {
				return "", fmt.Errorf("marshal trip listings: %w", err)
			}
			return string(out), nil
		},
	}
}

func applyTripDefaults(info *tripInfo, today string) {
	if info.DepartureDate == "" {
		info.DepartureDate = today
	}
	if info.Origin == "" {
		info.Origin = "Rafina"
	}
	if info.Destination == "" {
		info.Destination = "Andros"
	}
	if info.Passengers <= 0 {
		info.Passengers = 1
	}
	if info.Vehicles < 0 {
		info.Vehicles = 0
	}
	if info.Pets < 0 {
		info.Pets = 0
	}
}
