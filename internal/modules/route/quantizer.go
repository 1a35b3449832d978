package route

import (
	"context"
	"time"

	"github.com/karwaan/tripsync/internal/modules/geo"
)

// RevealStep is the pause between successive prefixes of the reveal
// sequence. Small enough that a full route draws in well under a second.
const RevealStep = 2 * time.Millisecond

// Reveal emits progressively longer prefixes of points - length 1 up to
// len(points) - with RevealStep between emissions, then closes the channel.
// Cancelling ctx abandons the remaining prefixes; a caller starting a new
// reveal cancels the previous one, so two animations never interleave.
//
// Empty input closes the channel immediately; the caller clears its
// rendering state without animation.
//
// Each emitted prefix is a subslice of the caller's input, never mutated,
// so sharing the backing array is safe.
func Reveal(ctx context.Context, points []geo.Coordinate, step time.Duration) <-chan []geo.Coordinate {
	out := make(chan []geo.Coordinate)

	go func() {
		defer close(out)

		ticker := time.NewTicker(step)
		defer ticker.Stop()

		for i := 1; i <= len(points); i++ {
			select {
			case out <- points[:i]:
			case <-ctx.Done():
				return
			}

			if i == len(points) {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
