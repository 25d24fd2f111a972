package stand

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/timbercruise/pkg/stem"
)

// statMetric is a per-acre value sampled on each plot
type statMetric struct {
	name  string
	value func(*stem.Stem) float64
}

var statMetrics = []statMetric{
	{"tpa", func(t *stem.Stem) float64 { return t.TPA }},
	{"ba_ac", func(t *stem.Stem) float64 { return t.BAPerAcre }},
	{"rd_ac", func(t *stem.Stem) float64 { return t.RDPerAcre }},
	{"gross_bf_ac", func(t *stem.Stem) float64 { return t.GrossBFPerAcre }},
	{"gross_cf_ac", func(t *stem.Stem) float64 { return t.GrossCFPerAcre }},
	{"net_bf_ac", func(t *stem.Stem) float64 { return t.NetBFPerAcre }},
	{"net_cf_ac", func(t *stem.Stem) float64 { return t.NetCFPerAcre }},
}

// Statistics describe how one per-acre metric varies between plots. With
// fewer than two plots only Mean is set and the rest are NaN.
type Statistics struct {
	Species       string  `json:"species"`
	Metric        string  `json:"metric"`
	Plots         int     `json:"plots"`
	Sufficient    bool    `json:"sufficient"`
	Mean          float64 `json:"mean"`
	Variance      float64 `json:"variance"`
	StdDev        float64 `json:"stdev"`
	StdErr        float64 `json:"stderr"`
	StdErrPercent float64 `json:"stderr_pct"`
	// Low and High bound the mean by one standard error; Low is rounded to
	// 0.1 and never negative
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Statistics returns sampling statistics for each species and for all
// species together (Species Totals). A plot without a species counts as a
// zero sample for it.
func (s *Stand) Statistics() []Statistics {
	groups := append(speciesCodes(s.Trees()), Totals)

	var out []Statistics
	for _, code := range groups {
		for _, m := range statMetrics {
			samples := make([]float64, len(s.Plots))
			for i, p := range s.Plots {
				for _, t := range p.Trees {
					if code == Totals || t.Species.Code == code {
						samples[i] += m.value(t)
					}
				}
			}
			st := sampleStatistics(samples)
			st.Species = code
			st.Metric = m.name
			out = append(out, st)
		}
	}
	return out
}

// sampleStatistics computes the mean, sample variance and standard error of
// per-plot samples
func sampleStatistics(samples []float64) Statistics {
	st := Statistics{Plots: len(samples)}
	if len(samples) < 2 {
		nan := math.NaN()
		st.Mean = stat.Mean(samples, nil)
		st.Variance, st.StdDev, st.StdErr, st.StdErrPercent, st.Low, st.High = nan, nan, nan, nan, nan, nan
		return st
	}

	st.Sufficient = true
	st.Mean, st.Variance = stat.MeanVariance(samples, nil)
	st.StdDev = math.Sqrt(st.Variance)
	st.StdErr = stat.StdErr(st.StdDev, float64(len(samples)))
	st.StdErrPercent = st.StdErr / st.Mean * 100
	st.Low = math.Max(math.Round((st.Mean-st.StdErr)*10)/10, 0)
	st.High = st.Mean + st.StdErr
	return st
}
