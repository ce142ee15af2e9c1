package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPortCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Rafina", "RAF"},
		{"rafina", "RAF"},
		{" ANDROS ", "AND"},
		{"Athens", "ATH"},
		{"Santorini", "SAN"},
		{"Atlantis", "RAF"},
		{"", "RAF"},
	}
	for _, c := range cases {
		if got := PortCode(c.in); got != c.want {
			t.Errorf("PortCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSearchTripsFlattensResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("agency-code") != "1000" {
			t.Errorf("missing agency-code header")
		}
		var payload []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload) != 1 {
			t.Errorf("unexpected payload: %v (%v)", payload, err)
		}
		_, _ = w.Write([]byte(`{
			"tripsWithDictionary": [{
				"trips": [{
					"departureDateTime": "2026-09-01 08:00",
					"arrivalDateTime": "2026-09-01 10:05",
					"basicPrice": 2450,
					"origin": {"idOrCode": "RAF"},
					"destination": {"idOrCode": "AND"},
					"vessel": {"idOrCode": "V1", "company": {"abbreviation": "GL"}}
				}],
				"companies": {"GL": {"name": "Golden Lines", "vessels": {"V1": {"name": "Superferry II"}}}},
				"locations": {"RAF": {"name": "Rafina"}, "AND": {"name": "Andros"}}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{Code: "1000"}, 5*time.Second)
	trips, err := c.SearchTrips(context.Background(), TripQuery{
		DepartureDate:       "2026-09-01",
		OriginIDOrCode:      "RAF",
		DestinationIDOrCode: "AND",
		Passengers:          2,
	})
	if err != nil {
		t.Fatalf("SearchTrips failed: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	got := trips[0]
	if got.Company != "Golden Lines" || got.Ferry != "Superferry II" {
		t.Errorf("company/vessel names not resolved: %+v", got)
	}
	if got.Origin != "Rafina" || got.Destination != "Andros" {
		t.Errorf("location names not resolved: %+v", got)
	}
	if got.Price != "24.50€" {
		t.Errorf("price = %q, want 24.50€", got.Price)
	}
}

func TestSearchTripsEmptyDictionary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, 5*time.Second)
	trips, err := c.SearchTrips(context.Background(), TripQuery{})
	if err != nil {
		t.Fatalf("SearchTrips failed: %v", err)
	}
	if len(trips) != 0 {
		t.Errorf("expected no trips, got %d", len(trips))
	}
}

func TestSearchTripsNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, 5*time.Second)
	if _, err := c.SearchTrips(context.Background(), TripQuery{}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestSearchTripsMissingDictionaryNames(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"tripsWithDictionary": [{
				"trips": [{
					"origin": {"idOrCode": "RAF"},
					"destination": {"idOrCode": "XXX"},
					"vessel": {"idOrCode": "V9", "company": {"abbreviation": "ZZ"}}
				}],
				"companies": {},
				"locations": {}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{}, 5*time.Second)
	trips, err := c.SearchTrips(context.Background(), TripQuery{})
	if err != nil {
		t.Fatalf("SearchTrips failed: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	got := trips[0]
	if got.Origin != "RAF" || got.Destination != "XXX" || got.Company != "ZZ" || got.Ferry != "V9" {
		t.Errorf("expected code fallbacks, got %+v", got)
	}
	if got.Price != "N/A" || got.Departure != "N/A" {
		t.Errorf("expected N/A placeholders, got %+v", got)
	}
}
