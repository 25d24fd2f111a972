// Package taper evaluates stem taper equations. Each model relates relative
// position along the stem to diameter inside bark (DIB) and produces a
// profile with one point per integer stem height, from 1 up to the floor of
// the tree's total height.
//
// Coefficients are opaque. Inputs that push a formula outside its domain
// produce NaN or ±Inf, which flow through to the profile unchanged.
package taper

import "math"

// InchesPerFoot converts DIB (inches) to feet in Point.DIBConverted
const InchesPerFoot = 12.0

// Point is the diameter inside bark at a single integer stem height
type Point struct {
	Height       int     `json:"height"`
	DIBInt       int     `json:"dib_int"`       // DIB truncated toward zero, clamped to the int range; 0 when DIB is not finite
	DIB          float64 `json:"dib"`           // DIB as computed
	DIBConverted float64 `json:"dib_converted"` // DIB / 12.0
}

// Finite reports whether the point's DIB is a real, finite number
func (p Point) Finite() bool {
	return !math.IsNaN(p.DIB) && !math.IsInf(p.DIB, 0)
}

// Profile holds one Point per stem height. profile[i].Height is always i+1.
type Profile []Point

// At returns the point at stem height h
func (p Profile) At(h int) (Point, bool) {
	if h < 1 || h > len(p) {
		return Point{}, false
	}
	return p[h-1], true
}

// Heights returns the stem heights present in the profile, in order
func (p Profile) Heights() []int {
	heights := make([]int, len(p))
	for i := range p {
		heights[i] = p[i].Height
	}
	return heights
}

// newPoint builds the (dib_int, dib, dib/12) tuple for one stem height
func newPoint(height int, dib float64) Point {
	pt := Point{
		Height:       height,
		DIB:          dib,
		DIBConverted: dib / InchesPerFoot,
	}
	if pt.Finite() {
		pt.DIBInt = WholeInches(math.Trunc(dib))
	}
	return pt
}

// WholeInches converts an already-rounded DIB to int. Values beyond the int
// range saturate at math.MaxInt or math.MinInt; NaN and ±Inf give 0.
func WholeInches(v float64) int {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}

// maxPrealloc caps the capacity hint for absurdly tall inputs
const maxPrealloc = 1 << 16

// buildProfile evaluates dibAt at every integer stem height in
// 1..floor(totalHeight). A NaN or sub-1 height yields an empty profile.
func buildProfile(totalHeight float64, dibAt func(stemHeight int) float64) Profile {
	var profile Profile
	if totalHeight >= 1 {
		profile = make(Profile, 0, int(math.Min(math.Floor(totalHeight), maxPrealloc)))
	}
	for h := 1; float64(h) <= totalHeight; h++ {
		profile = append(profile, newPoint(h, dibAt(h)))
	}
	return profile
}
