package route

import (
	"context"
	"testing"
	"time"

	"github.com/karwaan/tripsync/internal/modules/geo"

	"github.com/stretchr/testify/require"
)

func testPoints(n int) []geo.Coordinate {
	points := make([]geo.Coordinate, n)
	for i := range points {
		points[i] = geo.Coordinate{Latitude: float64(i), Longitude: float64(i)}
	}
	return points
}

func Test_Reveal_Emits_All_Prefixes_In_Order(t *testing.T) {
	points := testPoints(5)

	var prefixes [][]geo.Coordinate
	for prefix := range Reveal(context.Background(), points, time.Microsecond) {
		prefixes = append(prefixes, prefix)
	}

	require.Len(t, prefixes, 5)
	for i, prefix := range prefixes {
		require.Len(t, prefix, i+1)
	}
	require.Equal(t, points, prefixes[len(prefixes)-1])
}

func Test_Reveal_Empty_Route_Closes_Immediately(t *testing.T) {
	out := Reveal(context.Background(), nil, time.Microsecond)

	select {
	case _, open := <-out:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("reveal channel did not close for empty route")
	}
}

func Test_Reveal_Single_Point_Emits_Once(t *testing.T) {
	var prefixes [][]geo.Coordinate
	for prefix := range Reveal(context.Background(), testPoints(1), time.Microsecond) {
		prefixes = append(prefixes, prefix)
	}

	require.Len(t, prefixes, 1)
	require.Len(t, prefixes[0], 1)
}

func Test_Reveal_Cancellation_Discards_Remaining_Prefixes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	out := Reveal(ctx, testPoints(10_000), 10*time.Millisecond)

	first := <-out
	require.Len(t, first, 1)

	cancel()

	// After cancellation the channel must close without draining the
	// remaining ~10k prefixes.
	deadline := time.After(time.Second)
	for {
		select {
		case prefix, open := <-out:
			if !open {
				return
			}
			require.Less(t, len(prefix), 10_000)
		case <-deadline:
			t.Fatal("reveal channel did not close after cancellation")
		}
	}
}
