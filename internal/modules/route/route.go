package route

import (
	"errors"
	"fmt"

	"github.com/karwaan/tripsync/internal/modules/geo"
)

// FloorSpeedMetersPerSecond is the fastest plausible average driving speed
// used to clamp routing-API durations. Short legs occasionally come back
// with near-zero durations; the clamp keeps the displayed ETA sane.
// 30 km/h.
const FloorSpeedMetersPerSecond = 30.0 / 3.6

var ErrTooFewPoints = errors.New("route requires at least two points")

type Route struct {
	Points          []geo.Coordinate `json:"points"`
	DistanceMeters  float64          `json:"distance_meters"`
	DurationSeconds float64          `json:"duration_seconds"`
}

// New validates raw routing-API output into a Route, applying the duration
// floor.
func New(points []geo.Coordinate, distanceMeters, durationSeconds float64) (Route, error) {
	if len(points) < 2 {
		return Route{}, ErrTooFewPoints
	}

	return Route{
		Points:          points,
		DistanceMeters:  distanceMeters,
		DurationSeconds: clampDuration(distanceMeters, durationSeconds),
	}, nil
}

func clampDuration(distanceMeters, durationSeconds float64) float64 {
	minimum := distanceMeters / FloorSpeedMetersPerSecond
	if durationSeconds < minimum {
		return minimum
	}
	return durationSeconds
}

func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(meters))
}

func FormatDuration(seconds float64) string {
	minutes := int(seconds / 60)
	hours := minutes / 60
	mins := minutes % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%d min", mins)
}
