package herald

import "math"

// Coincident reports whether two detection timestamps fall within a
// single coincidence window, along with their absolute difference. The
// window boundary is inclusive: a difference exactly equal to window
// counts as coincident.
//
// A NaN timestamp means the corresponding photon never received timing
// data; the result is then (false, NaN) rather than an error, since
// missing timing is an expected condition in this domain.
func Coincident(t1, t2, window float64) (bool, float64) {
	if math.IsNaN(t1) || math.IsNaN(t2) {
		return false, math.NaN()
	}
	diff := math.Abs(t1 - t2)
	return diff <= window, diff
}
