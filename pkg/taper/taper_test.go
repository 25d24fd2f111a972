package taper

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sameFloat treats two NaNs as equal and otherwise requires exact equality
func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

var allModels = []struct {
	name    string
	profile func(dbh, totalHeight float64) Profile
}{
	{"czaplewski", func(dbh, th float64) Profile {
		return Czaplewski(dbh, th, 0.72, 0.12, -2.8758, 1.3458, -1.6264, 20.1315)
	}},
	{"kozak1969", func(dbh, th float64) Profile {
		return Kozak1969(dbh, th, 0.97576, -1.22922, 0.25347)
	}},
	{"kozak1988", func(dbh, th float64) Profile {
		return Kozak1988(dbh, th, 1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942)
	}},
	{"wensel", func(dbh, th float64) Profile {
		return Wensel(dbh, th, 0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019)
	}},
}

func TestProfileKeySet(t *testing.T) {
	heights := []struct {
		totalHeight float64
		want        int
	}{
		{80, 80},
		{37.6, 37},
		{1.9, 1},
		{0.5, 0},
		{0, 0},
		{-10, 0},
		{math.NaN(), 0},
	}

	for _, m := range allModels {
		for _, hh := range heights {
			profile := m.profile(20, hh.totalHeight)
			if len(profile) != hh.want {
				t.Errorf("%s: height %v gave %d points, expected %d", m.name, hh.totalHeight, len(profile), hh.want)
				continue
			}
			for i, pt := range profile {
				if pt.Height != i+1 {
					t.Errorf("%s: point %d has height %d", m.name, i, pt.Height)
				}
			}
			if _, ok := profile.At(0); ok {
				t.Errorf("%s: profile has an entry for height 0", m.name)
			}
			if _, ok := profile.At(hh.want + 1); ok {
				t.Errorf("%s: profile has an entry above total height", m.name)
			}
		}
	}
}

func TestPointColumns(t *testing.T) {
	for _, m := range allModels {
		for _, pt := range m.profile(24.3, 117.4) {
			if !sameFloat(pt.DIBConverted, pt.DIB/12.0) {
				t.Errorf("%s h=%d: DIBConverted = %v, expected %v", m.name, pt.Height, pt.DIBConverted, pt.DIB/12.0)
			}
			if !pt.Finite() {
				if pt.DIBInt != 0 {
					t.Errorf("%s h=%d: non-finite DIB has DIBInt %d", m.name, pt.Height, pt.DIBInt)
				}
				continue
			}
			if float64(pt.DIBInt) != math.Trunc(pt.DIB) {
				t.Errorf("%s h=%d: DIBInt = %d, expected trunc(%v)", m.name, pt.Height, pt.DIBInt, pt.DIB)
			}
		}
	}
}

func TestTruncationTowardZero(t *testing.T) {
	tests := []struct {
		dib  float64
		want int
	}{
		{18.9999, 18},
		{3.0, 3},
		{0.4, 0},
		{-0.4, 0},
		{-2.7, -2},
	}

	for _, tt := range tests {
		if got := newPoint(1, tt.dib).DIBInt; got != tt.want {
			t.Errorf("newPoint(%v).DIBInt = %d, expected %d", tt.dib, got, tt.want)
		}
	}
}

func TestWholeInches(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{18, 18},
		{-2, -2},
		{1e20, math.MaxInt},
		{-1e20, math.MinInt},
		{math.Inf(1), 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := WholeInches(tt.v); got != tt.want {
			t.Errorf("WholeInches(%v) = %d, expected %d", tt.v, got, tt.want)
		}
	}
}

func TestHugeFiniteDIB(t *testing.T) {
	tests := []struct {
		dbh  float64
		want int
	}{
		{1e20, math.MaxInt},
		{-1e20, math.MinInt},
	}

	for _, tt := range tests {
		profile := Kozak1969(tt.dbh, 10, 1, 0, 0)
		if len(profile) != 10 {
			t.Fatalf("dbh %v: expected 10 points, got %d", tt.dbh, len(profile))
		}
		for _, pt := range profile {
			if !pt.Finite() || pt.DIB != tt.dbh {
				t.Fatalf("dbh %v h=%d: expected finite DIB %v, got %v", tt.dbh, pt.Height, tt.dbh, pt.DIB)
			}
			if pt.DIBInt != tt.want {
				t.Errorf("dbh %v h=%d: DIBInt = %d, expected %d", tt.dbh, pt.Height, pt.DIBInt, tt.want)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, m := range allModels {
		first := m.profile(18.2, 96.3)
		second := m.profile(18.2, 96.3)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s: repeated call differs (-first +second):\n%s", m.name, diff)
		}
	}
}

func TestKozak1969Identity(t *testing.T) {
	profile := Kozak1969(17.5, 64, 1, 0, 0)
	for _, pt := range profile {
		if pt.DIB != 17.5 {
			t.Errorf("h=%d: DIB = %v, expected 17.5", pt.Height, pt.DIB)
		}
	}
}

func TestKozak1969WorkedExample(t *testing.T) {
	profile := Kozak1969(15.0, 60.0, 2.0, -1.0, 0.1)
	pt, ok := profile.At(30)
	if !ok {
		t.Fatal("profile has no entry for h=30")
	}
	if !approxEqual(pt.DIB, 18.523633552842703, 1e-9) {
		t.Errorf("DIB = %v, expected ~18.524", pt.DIB)
	}
	if pt.DIBInt != 18 {
		t.Errorf("DIBInt = %d, expected 18", pt.DIBInt)
	}
	if !approxEqual(pt.DIBConverted, 1.5436361294035585, 1e-9) {
		t.Errorf("DIBConverted = %v, expected ~1.5437", pt.DIBConverted)
	}
}

func TestKozak1969NegativeRadicand(t *testing.T) {
	for _, pt := range Kozak1969(15, 40, -1, 0, 0) {
		if !math.IsNaN(pt.DIB) || !math.IsNaN(pt.DIBConverted) {
			t.Fatalf("h=%d: expected NaN to propagate, got %v / %v", pt.Height, pt.DIB, pt.DIBConverted)
		}
		if pt.Finite() || pt.DIBInt != 0 {
			t.Fatalf("h=%d: expected non-finite point with DIBInt 0, got %+v", pt.Height, pt)
		}
	}
}

func TestCzaplewskiIndicatorsOff(t *testing.T) {
	tests := []struct {
		name string
		c, d float64
	}{
		{"sample c=1 d=0", 1, 0},
		{"real-valued c=-1 d=0", -1, 0},
		{"mixed c=-2.8758 d=1.3458", -2.8758, 1.3458},
	}

	const dbh, totalHeight = 20.0, 80.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := Czaplewski(dbh, totalHeight, 0, 0, tt.c, tt.d, -1.6264, 20.1315)
			for _, pt := range profile {
				h := float64(pt.Height)
				z := h / totalHeight
				z2 := (h * h) / (totalHeight * totalHeight)
				want := dbh * math.Sqrt(tt.c*(z-1)+tt.d*(z2-1))
				if !sameFloat(pt.DIB, want) {
					t.Errorf("h=%d: DIB = %v, expected %v", pt.Height, pt.DIB, want)
				}
			}
		})
	}
}

func TestCzaplewskiSegments(t *testing.T) {
	// Upper join point at Z=0.72, lower at Z=0.12 (Douglas-fir)
	a, b := 0.72, 0.12
	dbh, th := 20.0, 100.0

	below := CzaplewskiDIB(dbh, th, 11, a, b, -2.8758, 1.3458, -1.6264, 20.1315)
	withoutLower := dbh * math.Sqrt(-2.8758*(0.11-1)+1.3458*(0.0121-1)+-1.6264*(a-0.11)*(a-0.11))
	if below == withoutLower {
		t.Errorf("lower segment term was not applied below Z=b")
	}

	above := CzaplewskiDIB(dbh, th, 80, a, b, -2.8758, 1.3458, -1.6264, 20.1315)
	z := 0.8
	plain := dbh * math.Sqrt(-2.8758*(z-1)+1.3458*((80.0*80.0)/(100.0*100.0)-1))
	if above != plain {
		t.Errorf("segment terms applied above both join points: %v != %v", above, plain)
	}
}

func TestWenselStump(t *testing.T) {
	coefficients := [][5]float64{
		{0.82932, 1.50831, -4.08016, 0.047053, 0.0},
		{0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019},
		{0.86039, 1.45196, -2.42273, -0.15848, 0.036947},
		{1.0, 0.3155, -0.34316, 0.0, -0.00039283},
	}

	for _, k := range coefficients {
		for _, dbh := range []float64{8, 21.5, 40} {
			pt, ok := Wensel(dbh, 120, k[0], k[1], k[2], k[3], k[4]).At(1)
			if !ok {
				t.Fatal("missing h=1")
			}
			if pt.DIB != dbh*k[0] {
				t.Errorf("coef %v dbh %v: DIB at h=1 = %v, expected %v", k, dbh, pt.DIB, dbh*k[0])
			}
		}
	}
}

func TestWenselUnitHeight(t *testing.T) {
	profile := Wensel(10, 1, 0.955, 0.387, -0.362, -0.00581, 0.00122)
	if len(profile) != 1 {
		t.Fatalf("expected 1 point, got %d", len(profile))
	}
	if profile[0].Finite() {
		t.Errorf("expected 0/0 relative height to propagate, got %v", profile[0].DIB)
	}
}

func TestWenselZeroX(t *testing.T) {
	// c + d*dbh + e*H == 0 makes a/X divide by zero
	profile := Wensel(20, 30, 0.9, 1.5, -10, 0.5, 0)
	if len(profile) != 30 {
		t.Fatalf("expected 30 points, got %d", len(profile))
	}
	for _, pt := range profile {
		if pt.Finite() {
			t.Errorf("h=%d: expected non-finite DIB with X=0, got %v", pt.Height, pt.DIB)
		}
		if pt.DIBInt != 0 {
			t.Errorf("h=%d: DIBInt = %d, expected 0", pt.Height, pt.DIBInt)
		}
		if !sameFloat(pt.DIBConverted, pt.DIB/12.0) {
			t.Errorf("h=%d: DIBConverted = %v, expected %v", pt.Height, pt.DIBConverted, pt.DIB/12.0)
		}
	}
}

func TestKozak1988UnitInflection(t *testing.T) {
	// d=1 divides by zero in the base term
	profile := Kozak1988(20, 50, 1, 1, 1, 1, 1, 0, 0, 0, 0)
	for _, pt := range profile {
		if pt.Finite() {
			t.Errorf("h=%d: expected non-finite DIB with d=1, got %v", pt.Height, pt.DIB)
		}
	}
}

func TestReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"czaplewski DF h17", CzaplewskiDIB(20, 100, 17, 0.72, 0.12, -2.8758, 1.3458, -1.6264, 20.1315), 15.336513554259978},
		{"czaplewski DF h60", CzaplewskiDIB(20, 100, 60, 0.72, 0.12, -2.8758, 1.3458, -1.6264, 20.1315), 10.30704302891959},
		{"kozak1969 RA h30", Kozak1969DIB(14, 70, 30, 0.97576, -1.22922, 0.25347), 9.854917554195977},
		{"kozak1988 RC h17", Kozak1988DIB(30, 120, 17, 1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942), 23.835306631276936},
		{"kozak1988 RC h80", Kozak1988DIB(30, 120, 80, 1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942), 14.54178283082647},
		{"wensel SP h17", WenselDIB(32, 140, 17, 0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019), 26.26112537602716},
		{"wensel SP h100", WenselDIB(32, 140, 100, 0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019), 11.148475054089555},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !approxEqual(tt.got, tt.want, 1e-9) {
				t.Errorf("DIB = %.12f, expected %.12f", tt.got, tt.want)
			}
		})
	}
}

func TestProfileMatchesKernel(t *testing.T) {
	profile := Kozak1988(30, 120, 1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942)
	for _, pt := range profile {
		k := Kozak1988DIB(30, 120, pt.Height, 1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942)
		if !sameFloat(pt.DIB, k) {
			t.Errorf("h=%d: profile %v != kernel %v", pt.Height, pt.DIB, k)
		}
	}
}
