package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/karwaan/tripsync/internal/modules/geo"
)

// Client requests driving routes from an OSRM-compatible routing service.
type Client struct {
	baseURL string
	http    *http.Client
}

// DefaultBaseURL is the public OSRM demo server.
const DefaultBaseURL = "https://router.project-osrm.org"

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type osrmResponse struct {
	Routes []struct {
		Geometry struct {
			// GeoJSON order: [lng, lat]
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func (c *Client) GetRoute(ctx context.Context, start, end geo.Coordinate) (Route, error) {
	coords := fmt.Sprintf(
		"%f,%f;%f,%f",
		start.Longitude, start.Latitude,
		end.Longitude, end.Latitude,
	)

	u := fmt.Sprintf(
		"%s/route/v1/driving/%s?%s",
		c.baseURL,
		coords,
		url.Values{
			"overview":   {"full"},
			"geometries": {"geojson"},
		}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Route{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Route{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("routing request failed with status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Route{}, err
	}

	if len(body.Routes) == 0 {
		return Route{}, fmt.Errorf("routing service returned no routes")
	}

	r := body.Routes[0]

	points := make([]geo.Coordinate, 0, len(r.Geometry.Coordinates))
	for _, pair := range r.Geometry.Coordinates {
		if len(pair) < 2 {
			return Route{}, fmt.Errorf("malformed coordinate pair in route geometry")
		}
		points = append(points, geo.Coordinate{Latitude: pair[1], Longitude: pair[0]})
	}

	return New(points, r.Distance, r.Duration)
}
