package taper

import "math"

// Kozak1969DIB returns the DIB at a single stem height using Kozak's 1969
// quadratic model
func Kozak1969DIB(dbh, totalHeight float64, stemHeight int, a, b, c float64) float64 {
	z := float64(stemHeight) / totalHeight
	z2 := z * z

	return dbh * math.Sqrt(a+b*z+c*z2)
}

// Kozak1969 returns the DIB profile of a tree using Kozak's 1969 model
func Kozak1969(dbh, totalHeight, a, b, c float64) Profile {
	return buildProfile(totalHeight, func(h int) float64 {
		return Kozak1969DIB(dbh, totalHeight, h, a, b, c)
	})
}

// Kozak1988DIB returns the DIB at a single stem height using Kozak's 1988
// variable-exponent model. d is the relative height of the inflection point.
// The log term is offset by 0.001 to match the published equation.
func Kozak1988DIB(dbh, totalHeight float64, stemHeight int, a, b, c, d, e, f, g, h, i float64) float64 {
	z := float64(stemHeight) / totalHeight

	base := (1 - math.Pow(z, 0.5)) / (1 - math.Pow(d, 0.5))
	exponent := e*(z*z) + f*math.Log(z+0.001) + g*math.Pow(z, 0.5) + h*math.Exp(z) + i*(dbh/totalHeight)

	return (a * math.Pow(dbh, b) * math.Pow(c, dbh)) * math.Pow(base, exponent)
}

// Kozak1988 returns the DIB profile of a tree using Kozak's 1988 model with
// coefficients a through i
func Kozak1988(dbh, totalHeight, a, b, c, d, e, f, g, h, i float64) Profile {
	return buildProfile(totalHeight, func(stemHeight int) float64 {
		return Kozak1988DIB(dbh, totalHeight, stemHeight, a, b, c, d, e, f, g, h, i)
	})
}
