package route

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karwaan/tripsync/internal/modules/geo"

	"github.com/stretchr/testify/require"
)

func Test_New_Rejects_Single_Point(t *testing.T) {
	_, err := New(testPoints(1), 100, 10)
	require.ErrorIs(t, err, ErrTooFewPoints)
}

func Test_New_Clamps_Implausibly_Short_Durations(t *testing.T) {
	// 10 km in 10 seconds is not driving, it is an API anomaly.
	r, err := New(testPoints(2), 10_000, 10)
	require.NoError(t, err)

	minimum := 10_000 / FloorSpeedMetersPerSecond
	require.InDelta(t, minimum, r.DurationSeconds, 1e-9)
}

func Test_New_Keeps_Plausible_Durations(t *testing.T) {
	r, err := New(testPoints(2), 1000, 600)
	require.NoError(t, err)
	require.Equal(t, 600.0, r.DurationSeconds)
}

func Test_FormatDistance(t *testing.T) {
	require.Equal(t, "950 m", FormatDistance(950))
	require.Equal(t, "1.5 km", FormatDistance(1500))
}

func Test_FormatDuration(t *testing.T) {
	require.Equal(t, "5 min", FormatDuration(300))
	require.Equal(t, "1h 30m", FormatDuration(5400))
}

func Test_Client_Parses_OSRM_Response(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/route/v1/driving/")
		require.Equal(t, "full", r.URL.Query().Get("overview"))
		require.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		fmt.Fprint(w, `{
			"routes": [{
				"geometry": {"coordinates": [[16.37, 48.20], [16.38, 48.21]]},
				"distance": 1500.0,
				"duration": 240.0
			}]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	r, err := client.GetRoute(
		context.Background(),
		geo.Coordinate{Latitude: 48.20, Longitude: 16.37},
		geo.Coordinate{Latitude: 48.21, Longitude: 16.38},
	)

	require.NoError(t, err)
	require.Len(t, r.Points, 2)
	// GeoJSON pairs are lng,lat; the client must swap them.
	require.Equal(t, 48.20, r.Points[0].Latitude)
	require.Equal(t, 16.37, r.Points[0].Longitude)
	require.Equal(t, 1500.0, r.DistanceMeters)
	require.Equal(t, 240.0, r.DurationSeconds)
}

func Test_Client_Errors_On_Empty_Route_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"routes": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.GetRoute(context.Background(), geo.Coordinate{}, geo.Coordinate{})
	require.Error(t, err)
}

func Test_Client_Errors_On_Non_200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.GetRoute(context.Background(), geo.Coordinate{}, geo.Coordinate{})
	require.Error(t, err)
}
