// Package booking talks to the ferry trip-search service and reshapes its
// nested trip/company/location dictionaries into flat listings.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Credentials are the agency headers the trip-search service authenticates
// with.
type Credentials struct {
	Code      string
	Username  string
	Password  string
	Signature string
}

// TripQuery is one structured trip-search request.
type TripQuery struct {
	DepartureDate       string `json:"departureDate"`
	DepartureTime       string `json:"departureTime"`
	OriginIDOrCode      string `json:"originIdOrCode"`
	DestinationIDOrCode string `json:"destinationIdOrCode"`
	Passengers          int    `json:"passengers"`
	Vehicles            int    `json:"vehicles"`
	Pets                int    `json:"pets"`
}

// Trip is a flattened trip listing. Price is already formatted in currency
// units ("42.50€"), converted from the service's cent amounts.
type Trip struct {
	Company     string `json:"Company"`
	Ferry       string `json:"Ferry"`
	Origin      string `json:"Origin"`
	Destination string `json:"Destination"`
	Departure   string `json:"DepartureTime"`
	Arrival     string `json:"ArrivalTime"`
	Price       string `json:"Price"`
}

// Client issues trip-search requests.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

// NewClient creates a trip-search client. timeout bounds each request.
func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// portCodes maps known place names to the service's three-letter codes.
var portCodes = map[string]string{
	"Rafina":    "RAF",
	"Andros":    "AND",
	"Athens":    "ATH",
	"Santorini": "SAN",
}

// DefaultPortCode is used when a place name has no mapping.
const DefaultPortCode = "RAF"

// PortCode maps a free-text place name to its port code, falling back to
// DefaultPortCode for unknown places.
func PortCode(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if code, ok := portCodes[name]; ok {
		return code
	}
	return DefaultPortCode
}

// Wire types for the list-of-trips response. Only the fields we reshape are
// declared.
type tripsResponse struct {
	TripsWithDictionary []tripsWithDictionary `json:"tripsWithDictionary"`
}

type tripsWithDictionary struct {
	Trips     []wireTrip             `json:"trips"`
	Companies map[string]wireCompany `json:"companies"`
	Locations map[string]wireNamed   `json:"locations"`
}

type wireTrip struct {
	DepartureDateTime string       `json:"departureDateTime"`
	ArrivalDateTime   string       `json:"arrivalDateTime"`
	BasicPrice        *json.Number `json:"basicPrice"`
	Origin            wireIDOrCode `json:"origin"`
	Destination       wireIDOrCode `json:"destination"`
	Vessel            wireVessel   `json:"vessel"`
}

type wireIDOrCode struct {
	IDOrCode string `json:"idOrCode"`
}

type wireVessel struct {
	IDOrCode string `json:"idOrCode"`
	Company  struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"company"`
}

type wireCompany struct {
	Name    string               `json:"name"`
	Vessels map[string]wireNamed `json:"vessels"`
}

type wireNamed struct {
	Name string `json:"name"`
}

// SearchTrips issues one list-of-trips request and flattens the result.
// An empty slice with a nil error means the service found nothing.
func (c *Client) SearchTrips(ctx context.Context, q TripQuery) ([]Trip, error) {
	payload := []map[string]any{{
		"departureDate":       q.DepartureDate,
		"departureTime":       q.DepartureTime,
		"originIdOrCode":      q.OriginIDOrCode,
		"destinationIdOrCode": q.DestinationIDOrCode,
		"company":             map[string]any{"id": 0},
		"sorting":             "BY_DEPARTURE_TIME",
		"availabilityInformation": true,
		"quoteRequest": map[string]any{
			"passengers": q.Passengers,
			"vehicles":   q.Vehicles,
			"pets":       q.Pets,
		},
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal trip query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build trip request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("agency-code", c.creds.Code)
	req.Header.Set("agency-user-name", c.creds.Username)
	req.Header.Set("agency-password", c.creds.Password)
	req.Header.Set("agency-signature", c.creds.Signature)
	req.Header.Set("language-code", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trip search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trip search returned status %d", resp.StatusCode)
	}

	var parsed tripsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode trip search response: %w", err)
	}

	return flatten(parsed), nil
}

func flatten(parsed tripsResponse) []Trip {
	var trips []Trip
	for _, block := range parsed.TripsWithDictionary {
		for _, t := range block.Trips {
			originName := locationName(block.Locations, t.Origin.IDOrCode)
			destName := locationName(block.Locations, t.Destination.IDOrCode)

			companyAbbr := t.Vessel.Company.Abbreviation
			companyName := companyAbbr
			vesselName := t.Vessel.IDOrCode
			if company, ok := block.Companies[companyAbbr]; ok {
				if company.Name != "" {
					companyName = company.Name
				}
				if vessel, ok := company.Vessels[t.Vessel.IDOrCode]; ok && vessel.Name != "" {
					vesselName = vessel.Name
				}
			}

			trips = append(trips, Trip{
				Company:     companyName,
				Ferry:       vesselName,
				Origin:      originName,
				Destination: destName,
				Departure:   orNA(t.DepartureDateTime),
				Arrival:     orNA(t.ArrivalDateTime),
				Price:       formatPrice(t.BasicPrice),
			})
		}
	}
	return trips
}

func locationName(locations map[string]wireNamed, code string) string {
	if loc, ok := locations[code]; ok && loc.Name != "" {
		return loc.Name
	}
	return code
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// formatPrice converts the service's cent amount to currency units.
func formatPrice(cents *json.Number) string {
	if cents == nil {
		return "N/A"
	}
	v, err := cents.Float64()
	if err != nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f€", v/100)
}
