package geo

import (
	"sort"

	"github.com/mmcloughlin/geohash"
)

// NearbyPrecision is the geohash cell precision used for the proximity view.
// Precision 7 cells are roughly 150m across, which is "walking distance" for
// a group moving through a city together.
const NearbyPrecision uint = 7

func Cell(c Coordinate) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, NearbyPrecision)
}

// NearbyGroups computes, for every positioned member, the ids of the other
// members occupying the same or an adjacent geohash cell. Ids without a
// position do not appear in the result. Neighbor lists are sorted so the
// view is stable between roster syncs.
func NearbyGroups(positions map[string]Coordinate) map[string][]string {
	cells := make(map[string][]string, len(positions))
	for id, coordinate := range positions {
		cell := Cell(coordinate)
		cells[cell] = append(cells[cell], id)
	}

	groups := make(map[string][]string, len(positions))
	for id, coordinate := range positions {
		cell := Cell(coordinate)

		var near []string
		for _, other := range cells[cell] {
			if other != id {
				near = append(near, other)
			}
		}
		for _, neighbor := range geohash.Neighbors(cell) {
			near = append(near, cells[neighbor]...)
		}

		sort.Strings(near)
		groups[id] = near
	}

	return groups
}
