package geo

// TransmitThresholdMeters is the minimum movement between the last
// transmitted coordinate and a new sample before the new sample is worth
// pushing to the backend. The local marker always tracks the raw sample, so
// the threshold bounds write amplification without affecting perceived
// smoothness.
const TransmitThresholdMeters = 2.0

// ShouldTransmit reports whether candidate has moved far enough from the
// last transmitted coordinate to justify a backend write. A nil previous
// coordinate means nothing has been transmitted yet.
func ShouldTransmit(previous *Coordinate, candidate Coordinate) bool {
	if previous == nil {
		return true
	}

	return DistanceMeters(*previous, candidate) >= TransmitThresholdMeters
}
