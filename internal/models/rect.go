package models

// Rect is a geographic rectangle normalized to min/max bounds. Callers may
// supply the two corners in any order; NewRect never assumes one.
type Rect struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// NewRect builds a normalized rectangle from two opposite corners
func NewRect(lat1, lng1, lat2, lng2 float64) Rect {
	r := Rect{LatMin: lat1, LatMax: lat2, LngMin: lng1, LngMax: lng2}
	if r.LatMin > r.LatMax {
		r.LatMin, r.LatMax = r.LatMax, r.LatMin
	}
	if r.LngMin > r.LngMax {
		r.LngMin, r.LngMax = r.LngMax, r.LngMin
	}
	return r
}

// LatSpan returns the latitude extent of the rectangle
func (r Rect) LatSpan() float64 {
	return r.LatMax - r.LatMin
}

// LngSpan returns the longitude extent of the rectangle
func (r Rect) LngSpan() float64 {
	return r.LngMax - r.LngMin
}
