// Package stand aggregates cruised trees into plots and stands: per-acre
// summaries by species and DBH class, sampling statistics across plots, and
// log merchandising totals by species, grade and length.
package stand

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrissnell/timbercruise/pkg/stem"
)

// Totals labels the row that sums every group
const Totals = "TOTALS"

// dbhClassWidth is the width (in) of each DBH class
const dbhClassWidth = 2

// Metrics are per-acre stocking and volume values for a group of trees.
// Heights and HDR are plain means over the trees in the group.
type Metrics struct {
	TPA            float64 `json:"tpa"`
	BAPerAcre      float64 `json:"ba_ac"`
	RDPerAcre      float64 `json:"rd_ac"`
	QMD            float64 `json:"qmd"`
	TotalHeight    float64 `json:"total_height"`
	MerchHeight    float64 `json:"merch_height"`
	HDR            float64 `json:"hdr"`
	NetBFPerAcre   float64 `json:"net_bf_ac"`
	NetCFPerAcre   float64 `json:"net_cf_ac"`
	GrossBFPerAcre float64 `json:"gross_bf_ac"`
	GrossCFPerAcre float64 `json:"gross_cf_ac"`
	VBAR           float64 `json:"vbar"`
	CBAR           float64 `json:"cbar"`
}

// Summary is one row of a grouped summary
type Summary struct {
	Group string `json:"group"`
	Trees int    `json:"trees"`
	Metrics
}

// summarize sums the trees' per-acre values, divides them by plots, and
// derives QMD, VBAR and CBAR from the averaged sums
func summarize(trees []*stem.Stem, plots int) Metrics {
	var m Metrics
	if len(trees) == 0 {
		return m
	}

	for _, t := range trees {
		m.TPA += t.TPA
		m.BAPerAcre += t.BAPerAcre
		m.RDPerAcre += t.RDPerAcre
		m.NetBFPerAcre += t.NetBFPerAcre
		m.NetCFPerAcre += t.NetCFPerAcre
		m.GrossBFPerAcre += t.GrossBFPerAcre
		m.GrossCFPerAcre += t.GrossCFPerAcre

		m.TotalHeight += t.TotalHeight
		m.MerchHeight += float64(t.MerchHeight)
		m.HDR += t.HDR
	}

	n := float64(len(trees))
	m.TotalHeight /= n
	m.MerchHeight /= n
	m.HDR /= n

	p := float64(plots)
	m.TPA /= p
	m.BAPerAcre /= p
	m.RDPerAcre /= p
	m.NetBFPerAcre /= p
	m.NetCFPerAcre /= p
	m.GrossBFPerAcre /= p
	m.GrossCFPerAcre /= p

	m.QMD = math.Sqrt(m.BAPerAcre / m.TPA / stem.BasalAreaFactor)
	m.VBAR = m.NetBFPerAcre / m.BAPerAcre
	m.CBAR = m.NetCFPerAcre / m.BAPerAcre
	return m
}

// groupKey assigns a tree to a summary group and orders the groups
type groupKey struct {
	label func(*stem.Stem) string
	rank  func(*stem.Stem) float64
}

var bySpecies = groupKey{
	label: func(t *stem.Stem) string { return t.Species.Code },
	rank:  func(t *stem.Stem) float64 { return float64(t.Species.SortOrder) },
}

var byDBHClass = groupKey{
	label: func(t *stem.Stem) string {
		low := dbhClassLow(t.DBH)
		return fmt.Sprintf("%d-%d", low, low+dbhClassWidth)
	},
	rank: func(t *stem.Stem) float64 { return float64(dbhClassLow(t.DBH)) },
}

// dbhClassLow is the lower bound of the DBH class holding dbh
func dbhClassLow(dbh float64) int {
	return int(math.Floor(dbh/dbhClassWidth)) * dbhClassWidth
}

// groupSummaries summarizes trees per group, ordered by rank then label,
// followed by a Totals row
func groupSummaries(trees []*stem.Stem, plots int, key groupKey) []Summary {
	groups := make(map[string][]*stem.Stem)
	ranks := make(map[string]float64)
	for _, t := range trees {
		label := key.label(t)
		groups[label] = append(groups[label], t)
		ranks[label] = key.rank(t)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if ranks[labels[i]] != ranks[labels[j]] {
			return ranks[labels[i]] < ranks[labels[j]]
		}
		return labels[i] < labels[j]
	})

	out := make([]Summary, 0, len(labels)+1)
	for _, label := range labels {
		out = append(out, Summary{Group: label, Trees: len(groups[label]), Metrics: summarize(groups[label], plots)})
	}
	return append(out, Summary{Group: Totals, Trees: len(trees), Metrics: summarize(trees, plots)})
}

// speciesCodes lists the distinct species of trees in catalog order
func speciesCodes(trees []*stem.Stem) []string {
	rows := groupSummaries(trees, 1, bySpecies)
	codes := make([]string, 0, len(rows)-1)
	for _, r := range rows[:len(rows)-1] {
		codes = append(codes, r.Group)
	}
	return codes
}
