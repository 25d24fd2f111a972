package stand

import (
	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/stem"
)

// Plot is one sample plot of a stand
type Plot struct {
	Number int `json:"number"`
	// PlotFactor applies to trees added with AddTree
	PlotFactor float64      `json:"plot_factor"`
	Trees      []*stem.Stem `json:"trees"`
}

// NewPlot returns an empty plot
func NewPlot(number int, plotFactor float64) *Plot {
	return &Plot{Number: number, PlotFactor: plotFactor, Trees: []*stem.Stem{}}
}

// AddTree builds a tree with the plot's plot factor and adds it to the plot.
// Options given here are applied after the plot factor.
func (p *Plot) AddTree(sp species.Species, dbh, totalHeight float64, opts ...stem.Option) (*stem.Stem, error) {
	opts = append([]stem.Option{stem.WithPlotFactor(p.PlotFactor)}, opts...)
	s, err := stem.New(sp, dbh, totalHeight, opts...)
	if err != nil {
		return nil, err
	}
	p.Trees = append(p.Trees, s)
	return s, nil
}

// Add adds trees that were built elsewhere, keeping their own plot factors
func (p *Plot) Add(trees ...*stem.Stem) {
	p.Trees = append(p.Trees, trees...)
}

// Summary returns the plot's per-acre values for all trees
func (p *Plot) Summary() Summary {
	return Summary{Group: Totals, Trees: len(p.Trees), Metrics: summarize(p.Trees, 1)}
}

// SpeciesSummary returns one row per species followed by a Totals row
func (p *Plot) SpeciesSummary() []Summary {
	return groupSummaries(p.Trees, 1, bySpecies)
}
