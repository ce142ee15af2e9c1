// Package places proxies the Google Places API for location photos. The
// photo endpoint answers with a redirect to the hosted image; we capture the
// redirect target instead of following it so the frontend can load images
// directly.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when a place or photo reference resolves to
// nothing.
var ErrNotFound = errors.New("places: not found")

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// maxPhotoWidth is requested for proxied photos.
const maxPhotoWidth = 400

// Client calls the Places API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	// noRedirect captures redirect targets instead of following them.
	noRedirect *http.Client
}

// NewClient creates a Places client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		noRedirect: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build places request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode places response: %w", err)
	}
	return nil
}

// PhotoURLs resolves a free-text location to the image URLs of its photos.
// An unknown location yields an empty slice, not an error.
func (c *Client) PhotoURLs(ctx context.Context, location string) ([]string, error) {
	searchURL := fmt.Sprintf("%s/findplacefromtext/json?input=%s&inputtype=textquery&fields=place_id&key=%s",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	var search struct {
		Candidates []struct {
			PlaceID string `json:"place_id"`
		} `json:"candidates"`
	}
	if err := c.getJSON(ctx, searchURL, &search); err != nil {
		return nil, err
	}
	if len(search.Candidates) == 0 {
		return nil, nil
	}

	detailsURL := fmt.Sprintf("%s/details/json?place_id=%s&fields=photos&key=%s",
		c.baseURL, url.QueryEscape(search.Candidates[0].PlaceID), url.QueryEscape(c.apiKey))

	var details struct {
		Result struct {
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, detailsURL, &details); err != nil {
		return nil, err
	}

	var urls []string
	for _, photo := range details.Result.Photos {
		target, err := c.resolvePhotoURL(ctx, photo.PhotoReference)
		if err != nil {
			continue
		}
		urls = append(urls, target)
	}
	return urls, nil
}

// resolvePhotoURL asks the photo endpoint for ref and returns the redirect
// target pointing at the actual image.
func (c *Client) resolvePhotoURL(ctx context.Context, ref string) (string, error) {
	photoURL := c.photoEndpoint(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return "", fmt.Errorf("build photo request: %w", err)
	}
	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("photo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently && resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("photo endpoint returned status %d", resp.StatusCode)
	}
	target := resp.Header.Get("Location")
	if target == "" {
		return "", ErrNotFound
	}
	return target, nil
}

// Photo fetches the image bytes for a photo reference. Returns the bytes and
// content type, or ErrNotFound.
func (c *Client) Photo(ctx context.Context, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.photoEndpoint(ref), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build photo request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("photo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", ErrNotFound
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

func (c *Client) photoEndpoint(ref string) string {
	return fmt.Sprintf("%s/photo?maxwidth=%d&photoreference=%s&key=%s",
		c.baseURL, maxPhotoWidth, url.QueryEscape(ref), url.QueryEscape(c.apiKey))
}
