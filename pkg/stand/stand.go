package stand

import (
	"strings"
	"time"

	"github.com/chrissnell/timbercruise/pkg/stem"
)

// Stand is a forest stand sampled by one or more plots
type Stand struct {
	Name          string    `json:"name"`
	Acres         float64   `json:"acres"`
	InventoryDate time.Time `json:"inventory_date"`
	Plots         []*Plot   `json:"plots"`
}

// Report bundles every summary of a stand
type Report struct {
	Stand      string       `json:"stand"`
	Acres      float64      `json:"acres"`
	Plots      int          `json:"plots"`
	Trees      int          `json:"trees"`
	Species    []Summary    `json:"species"`
	DBHClasses []Summary    `json:"dbh_classes"`
	Statistics []Statistics `json:"statistics"`
	Logs       []LogRow     `json:"logs"`
}

// New returns an empty stand. The name is upper-cased.
func New(name string, acres float64, inventoryDate time.Time) *Stand {
	return &Stand{
		Name:          strings.ToUpper(name),
		Acres:         acres,
		InventoryDate: inventoryDate,
		Plots:         []*Plot{},
	}
}

// AddPlot adds plots to the stand, numbering any that have no number
func (s *Stand) AddPlot(plots ...*Plot) {
	for _, p := range plots {
		if p.Number == 0 {
			p.Number = len(s.Plots) + 1
		}
		s.Plots = append(s.Plots, p)
	}
}

// Trees returns the trees of every plot
func (s *Stand) Trees() []*stem.Stem {
	var trees []*stem.Stem
	for _, p := range s.Plots {
		trees = append(trees, p.Trees...)
	}
	return trees
}

// Summary returns the stand's per-acre values averaged over its plots
func (s *Stand) Summary() Summary {
	trees := s.Trees()
	return Summary{Group: Totals, Trees: len(trees), Metrics: summarize(trees, len(s.Plots))}
}

// SpeciesSummary returns one row per species followed by a Totals row
func (s *Stand) SpeciesSummary() []Summary {
	return groupSummaries(s.Trees(), len(s.Plots), bySpecies)
}

// DBHClassSummary returns one row per 2 in DBH class followed by a Totals row
func (s *Stand) DBHClassSummary() []Summary {
	return groupSummaries(s.Trees(), len(s.Plots), byDBHClass)
}

// Report computes every summary of the stand
func (s *Stand) Report() Report {
	return Report{
		Stand:      s.Name,
		Acres:      s.Acres,
		Plots:      len(s.Plots),
		Trees:      len(s.Trees()),
		Species:    s.SpeciesSummary(),
		DBHClasses: s.DBHClassSummary(),
		Statistics: s.Statistics(),
		Logs:       s.LogSummary(),
	}
}
