package taper

import "math"

// CzaplewskiDIB returns the DIB at a single stem height using the Czaplewski
// segmented polynomial. a and b are the join points of the two upper-stem
// segments; each segment's term only applies below its join point.
func CzaplewskiDIB(dbh, totalHeight float64, stemHeight int, a, b, c, d, e, f float64) float64 {
	h := float64(stemHeight)
	z := h / totalHeight
	z2 := (h * h) / (totalHeight * totalHeight)

	i1 := indicator(z < a)
	i2 := indicator(z < b)

	return dbh * math.Sqrt(c*(z-1)+d*(z2-1)+e*(a-z)*(a-z)*i1+f*(b-z)*(b-z)*i2)
}

// Czaplewski returns the DIB profile of a tree using the Czaplewski model
// with coefficients a through f
func Czaplewski(dbh, totalHeight, a, b, c, d, e, f float64) Profile {
	return buildProfile(totalHeight, func(h int) float64 {
		return CzaplewskiDIB(dbh, totalHeight, h, a, b, c, d, e, f)
	})
}

func indicator(cond bool) float64 {
	if cond {
		return 1
	}
	return 0
}
