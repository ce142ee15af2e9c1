package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(srvURL string) *Client {
	c := NewClient("test-key", 5*time.Second)
	c.baseURL = srvURL
	return c
}

func TestPhotoURLsResolvesRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/findplacefromtext/"):
			_, _ = w.Write([]byte(`{"candidates": [{"place_id": "pid-1"}]}`))
		case strings.HasPrefix(r.URL.Path, "/details/"):
			if r.URL.Query().Get("place_id") != "pid-1" {
				t.Errorf("unexpected place_id %q", r.URL.Query().Get("place_id"))
			}
			_, _ = w.Write([]byte(`{"result": {"photos": [{"photo_reference": "ref-1"}, {"photo_reference": "ref-2"}]}}`))
		case strings.HasPrefix(r.URL.Path, "/photo"):
			ref := r.URL.Query().Get("photoreference")
			w.Header().Set("Location", "https://img.example.com/"+ref)
			w.WriteHeader(http.StatusFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	urls, err := newTestClient(srv.URL).PhotoURLs(context.Background(), "Andros")
	if err != nil {
		t.Fatalf("PhotoURLs failed: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 photo URLs, got %d", len(urls))
	}
	if urls[0] != "https://img.example.com/ref-1" {
		t.Errorf("unexpected first URL %q", urls[0])
	}
}

func TestPhotoURLsUnknownLocation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	urls, err := newTestClient(srv.URL).PhotoURLs(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("PhotoURLs failed: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected no URLs for unknown location, got %v", urls)
	}
}

func TestPhotoStreamsBytes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF}) // JPEG magic
	}))
	defer srv.Close()

	data, contentType, err := newTestClient(srv.URL).Photo(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("Photo failed: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q", contentType)
	}
	if len(data) != 3 || data[0] != 0xFF {
		t.Errorf("unexpected image bytes %v", data)
	}
}

func TestPhotoNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).Photo(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
