package stand

import (
	"math"
	"sort"

	"github.com/chrissnell/timbercruise/pkg/stem"
)

// LogCell holds per-acre log totals for one table cell
type LogCell struct {
	LPA          float64 `json:"lpa"`
	NetBFPerAcre float64 `json:"net_bf_ac"`
	NetCFPerAcre float64 `json:"net_cf_ac"`
}

func (c *LogCell) add(l stem.Log) {
	c.LPA += l.LPA
	c.NetBFPerAcre += l.NetBFPerAcre
	c.NetCFPerAcre += l.NetCFPerAcre
}

func (c *LogCell) divide(n float64) {
	c.LPA /= n
	c.NetBFPerAcre /= n
	c.NetCFPerAcre /= n
}

// LogRow is one species and grade of the log table. Lengths lines up with
// stem.LengthRanges; logs outside every length band count only in Total.
type LogRow struct {
	Species string    `json:"species"`
	Grade   string    `json:"grade"`
	Lengths []LogCell `json:"lengths"`
	Total   LogCell   `json:"total"`
}

// LogSummary tabulates logs per acre and net volume per acre by species,
// grade and length band, averaged over plots. Each species ends with a
// Totals grade row and the table ends with a Totals species row.
func (s *Stand) LogSummary() []LogRow {
	type key struct{ species, grade string }
	rows := make(map[key]*LogRow)
	speciesRank := map[string]int{}

	row := func(k key) *LogRow {
		r, ok := rows[k]
		if !ok {
			r = &LogRow{Species: k.species, Grade: k.grade, Lengths: make([]LogCell, len(stem.LengthRanges))}
			rows[k] = r
		}
		return r
	}

	for _, t := range s.Trees() {
		speciesRank[t.Species.Code] = t.Species.SortOrder
		for _, l := range t.Logs {
			band := lengthBand(l.LengthRange)
			for _, k := range []key{
				{t.Species.Code, l.Grade},
				{t.Species.Code, Totals},
				{Totals, Totals},
			} {
				r := row(k)
				if band >= 0 {
					r.Lengths[band].add(l)
				}
				r.Total.add(l)
			}
		}
	}

	out := make([]LogRow, 0, len(rows))
	plots := float64(len(s.Plots))
	for _, r := range rows {
		for i := range r.Lengths {
			r.Lengths[i].divide(plots)
		}
		r.Total.divide(plots)
		out = append(out, *r)
	}

	rank := func(code string) int {
		if code == Totals {
			return math.MaxInt
		}
		return speciesRank[code]
	}
	gradeRank := func(grade string) int {
		if grade == Totals {
			return math.MaxInt
		}
		return stem.GradeOrder(grade)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if rank(a.Species) != rank(b.Species) {
			return rank(a.Species) < rank(b.Species)
		}
		if a.Species != b.Species {
			return a.Species < b.Species
		}
		return gradeRank(a.Grade) < gradeRank(b.Grade)
	})
	return out
}

// lengthBand returns the index of a length range label, or -1
func lengthBand(label string) int {
	for i, r := range stem.LengthRanges {
		if r.Label == label {
			return i
		}
	}
	return -1
}
