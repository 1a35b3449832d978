package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Place is one geocoding result.
type Place struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Client looks up free-text queries against a Nominatim-compatible
// geocoding service. Debouncing is the caller's concern - the client itself
// is a plain stateless request/response wrapper.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

const (
	// DefaultBaseURL is the public Nominatim instance. Heavy users should
	// point at their own deployment.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	DefaultLimit = 5
)

func NewClient(baseURL string, limit int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Client{
		baseURL: baseURL,
		limit:   limit,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	u := fmt.Sprintf(
		"%s/search?%s",
		c.baseURL,
		url.Values{
			"q":      {query},
			"format": {"json"},
			"limit":  {strconv.Itoa(c.limit)},
		}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}

		places = append(places, Place{
			DisplayName: r.DisplayName,
			Latitude:    lat,
			Longitude:   lng,
		})
	}

	return places, nil
}
