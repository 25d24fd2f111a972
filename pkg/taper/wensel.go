package taper

import "math"

// WenselDIB returns the DIB at a single stem height using the Wensel model.
// Relative height is measured from a 1-unit stump, so stem height 1 maps to
// Z = 0 and the DIB there is dbh*a.
func WenselDIB(dbh, totalHeight float64, stemHeight int, a, b, c, d, e float64) float64 {
	z := (float64(stemHeight) - 1) / (totalHeight - 1)
	x := c + d*dbh + e*totalHeight

	return dbh * (a - x*math.Log(1-math.Pow(z, b)*(1-math.Exp(a/x))))
}

// Wensel returns the DIB profile of a tree using the Wensel model
func Wensel(dbh, totalHeight, a, b, c, d, e float64) Profile {
	return buildProfile(totalHeight, func(h int) float64 {
		return WenselDIB(dbh, totalHeight, h, a, b, c, d, e)
	})
}
