package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Roughly one degree of latitude in meters, used to build coordinates a
// known distance apart.
const metersPerDegreeLat = 111_194.9

func offsetNorth(c Coordinate, meters float64) Coordinate {
	return Coordinate{
		Latitude:  c.Latitude + meters/metersPerDegreeLat,
		Longitude: c.Longitude,
	}
}

func Test_ShouldTransmit_True_For_First_Sample(t *testing.T) {
	require.True(t, ShouldTransmit(nil, Coordinate{Latitude: 48.2, Longitude: 16.3}))
}

func Test_ShouldTransmit_False_Below_Threshold(t *testing.T) {
	previous := Coordinate{Latitude: 48.2082, Longitude: 16.3738}
	candidate := offsetNorth(previous, 1.5)

	require.False(t, ShouldTransmit(&previous, candidate))
}

func Test_ShouldTransmit_True_At_And_Above_Threshold(t *testing.T) {
	previous := Coordinate{Latitude: 48.2082, Longitude: 16.3738}

	require.True(t, ShouldTransmit(&previous, offsetNorth(previous, TransmitThresholdMeters)))
	require.True(t, ShouldTransmit(&previous, offsetNorth(previous, 3)))
}

func Test_ShouldTransmit_False_For_Identical_Coordinates(t *testing.T) {
	previous := Coordinate{Latitude: -33.8688, Longitude: 151.2093}

	require.False(t, ShouldTransmit(&previous, previous))
}

func Test_DistanceMeters_Known_Distance(t *testing.T) {
	// Vienna Stephansplatz to Karlsplatz, roughly 1.06 km.
	a := Coordinate{Latitude: 48.20849, Longitude: 16.37208}
	b := Coordinate{Latitude: 48.19936, Longitude: 16.36961}

	d := DistanceMeters(a, b)
	require.InDelta(t, 1030, d, 30)
}

func Test_DistanceMeters_Antipodal_Points_Stable(t *testing.T) {
	a := Coordinate{Latitude: 0, Longitude: 0}
	b := Coordinate{Latitude: 0, Longitude: 180}

	d := DistanceMeters(a, b)
	require.False(t, math.IsNaN(d))
	require.InDelta(t, math.Pi*earthRadiusMeters, d, 1)
}

func Test_DistanceMeters_Near_Pole_Stable(t *testing.T) {
	// Two points a fraction of a meter apart next to the north pole. The
	// haversine formula must not produce NaN or a wildly wrong distance
	// from floating point cancellation.
	a := Coordinate{Latitude: 89.9999999, Longitude: 10}
	b := Coordinate{Latitude: 89.9999999, Longitude: -170}

	d := DistanceMeters(a, b)
	require.False(t, math.IsNaN(d))
	require.Less(t, d, 1.0)
}

func Test_DistanceMeters_Symmetric(t *testing.T) {
	a := Coordinate{Latitude: 35.6762, Longitude: 139.6503}
	b := Coordinate{Latitude: -23.5505, Longitude: -46.6333}

	require.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-9)
}
