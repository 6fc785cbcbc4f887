package common

// ParabolicVertex fits a parabola through data[idx-1], data[idx], data[idx+1]
// and returns the fractional index of its vertex.
//
// The integer index is returned unchanged when idx has no neighbour on either
// side, or when the fit is degenerate (flat or non-finite), so callers always
// get a usable position.
func ParabolicVertex(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y0 := data[idx-1]
	y1 := data[idx]
	y2 := data[idx+1]

	denom := 2 * (2*y1 - y2 - y0)
	if denom == 0 {
		return float64(idx)
	}

	vertex := float64(idx) + (y2-y0)/denom
	if !IsFinite(vertex) {
		return float64(idx)
	}
	return vertex
}
