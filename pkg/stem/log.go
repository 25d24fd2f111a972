package stem

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrLogHeight is returned when a log's top is not a height on the stem profile
	ErrLogHeight = errors.New("log top is outside the stem profile")
	// ErrUnknownGrade is returned for grade codes or names that are not recognized
	ErrUnknownGrade = errors.New("unknown log grade")
	// ErrUngradable is returned when no grading rule applies to a log
	ErrUngradable = errors.New("no grade applies to log")
	// ErrScribnerRange is returned when a top DIB is beyond the Scribner table
	ErrScribnerRange = errors.New("top DIB outside Scribner table")
)

// Log is one merchandised section of a stem, scaled by its top DIB
type Log struct {
	Number      int     `json:"number"`
	StemHeight  int     `json:"stem_height"`
	Length      int     `json:"length"`
	Defect      int     `json:"defect"`
	TopDIB      int     `json:"top_dib"`
	Grade       string  `json:"grade"`
	GradeName   string  `json:"grade_name"`
	LengthRange string  `json:"length_range"`
	Scribner    float64 `json:"scribner"`

	GrossBF int     `json:"gross_bf"`
	NetBF   int     `json:"net_bf"`
	GrossCF float64 `json:"gross_cf"`
	NetCF   float64 `json:"net_cf"`

	// LPA is logs per acre, the parent tree's TPA
	LPA            float64 `json:"lpa"`
	GrossBFPerAcre float64 `json:"gross_bf_ac"`
	NetBFPerAcre   float64 `json:"net_bf_ac"`
	GrossCFPerAcre float64 `json:"gross_cf_ac"`
	NetCFPerAcre   float64 `json:"net_cf_ac"`
}

// newLog scales a log whose top sits at stemHeight. An empty grade is
// assigned from the species' grading rules.
func (s *Stem) newLog(stemHeight, length int, grade string, defect int) (Log, error) {
	pt, ok := s.Profile.At(stemHeight)
	if !ok {
		return Log{}, fmt.Errorf("%w: height %d on a %d ft profile", ErrLogHeight, stemHeight, len(s.Profile))
	}

	l := Log{
		StemHeight: stemHeight,
		Length:     length,
		Defect:     defect,
		TopDIB:     pt.DIBInt,
		LPA:        s.TPA,
	}

	var err error
	if grade != "" {
		l.Grade, err = ParseGrade(grade)
	} else {
		l.Grade, err = GradeFor(s.Species.Code, l.TopDIB, length, defect)
	}
	if err != nil {
		return Log{}, err
	}
	l.GradeName = GradeNames[l.Grade]
	l.LengthRange = LengthRangeOf(length)

	l.Scribner, err = ScribnerFactor(l.TopDIB, length)
	if err != nil {
		return Log{}, err
	}
	l.GrossBF, l.NetBF = BoardFeet(l.Scribner, length, defect)
	l.GrossCF, l.NetCF = CubicFeet(l.TopDIB, length, defect)

	l.GrossBFPerAcre = float64(l.GrossBF) * l.LPA
	l.NetBFPerAcre = float64(l.NetBF) * l.LPA
	l.GrossCFPerAcre = l.GrossCF * l.LPA
	l.NetCFPerAcre = l.NetCF * l.LPA
	return l, nil
}

// GradeFor grades a log by species, top DIB and length. A defect above 5%
// drops the log one grade, except from the lowest grade.
func GradeFor(speciesCode string, topDIB, length, defect int) (string, error) {
	rules, ok := gradeRules[strings.ToUpper(speciesCode)]
	if !ok {
		return "", fmt.Errorf("%w: no grading rules for species %s", ErrUngradable, speciesCode)
	}
	for i, rule := range rules {
		if topDIB >= rule.MinTopDIB && length >= rule.MinLength {
			if defect > 5 && i < len(rules)-1 {
				return rules[i+1].Grade, nil
			}
			return rule.Grade, nil
		}
	}
	return "", fmt.Errorf("%w: %d in top, %d ft", ErrUngradable, topDIB, length)
}

// ParseGrade accepts a grade code in either order ("S2", "2S") or a grade
// name with spaces, dots, underscores or dashes ("saw 2", "SAW_2")
func ParseGrade(s string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := GradeNames[upper]; ok {
		return upper, nil
	}
	if len(upper) == 2 {
		reversed := string([]byte{upper[1], upper[0]})
		if _, ok := GradeNames[reversed]; ok {
			return reversed, nil
		}
	}
	name := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(upper)
	for code, full := range GradeNames {
		if full == name {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}

// LengthRangeOf returns the label of the length band holding length, or ""
func LengthRangeOf(length int) string {
	for _, r := range LengthRanges {
		if length >= r.Min && length <= r.Max {
			return r.Label
		}
	}
	return ""
}

// ScribnerFactor returns the board feet per foot of length for a log
func ScribnerFactor(topDIB, length int) (float64, error) {
	if topDIB < 0 || topDIB >= len(scribnerFactors) {
		return 0, fmt.Errorf("%w: %d in", ErrScribnerRange, topDIB)
	}
	factors := scribnerFactors[topDIB]
	if len(factors) == 1 {
		return factors[0], nil
	}
	switch {
	case length > 0 && length < 16:
		return factors[0], nil
	case length >= 16 && length < 32:
		return factors[1], nil
	default:
		return factors[2], nil
	}
}

// BoardFeet returns gross and net Scribner board feet, each rounded down
func BoardFeet(scribner float64, length, defect int) (gross, net int) {
	g := float64(length) * scribner
	return int(math.Floor(g)), int(math.Floor(g * (1 - float64(defect)/100)))
}

// CubicFeet returns gross and net volume by the two-end conic cubic foot rule
func CubicFeet(topDIB, length, defect int) (gross, net float64) {
	x := float64(length) + 1
	if length < 17 {
		x = float64(length) * 0.67
	}
	d := float64(topDIB) + 0.7
	gross = (BasalAreaFactor * x) * ((2*d*d + 2*d) / 3)
	return gross, gross * (1 - float64(defect)/100)
}
