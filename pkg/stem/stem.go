// Package stem derives tree-level measurements from a species' taper
// profile: merchantable DIB and height, basal area, relative density,
// plot-factor expansion to per-acre values, and log scaling by Scribner
// board feet and two-end conic cubic feet.
package stem

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/taper"
)

const (
	// FormHeight is the stem height (ft) whose DIB sets the merchantable top
	FormHeight = 17
	// MerchFraction of the form-height DIB defines the merchantable top DIB
	MerchFraction = 0.40
	// BasalAreaFactor converts a diameter in inches squared to square feet
	BasalAreaFactor = 0.005454
)

var (
	// ErrBelowFormHeight is returned for trees too short to have a form-height DIB
	ErrBelowFormHeight = errors.New("tree is shorter than form height")
	// ErrNoMerchHeight is returned when no stem height has the merchantable DIB
	ErrNoMerchHeight = errors.New("no stem height matches merchantable DIB")
)

// Stem is a single tree with its taper profile and derived metrics
type Stem struct {
	Species     species.Species `json:"species"`
	DBH         float64         `json:"dbh"`
	TotalHeight float64         `json:"total_height"`
	Profile     taper.Profile   `json:"profile"`

	// PlotFactor is the BAF of a variable-radius plot when positive, or the
	// negative inverse of a fixed plot's area (1/20 ac = -20). Zero leaves
	// the per-acre values at zero.
	PlotFactor float64 `json:"plot_factor"`

	// Buckets maps each whole-inch DIB to the stem heights that have it, lowest first
	Buckets map[int][]int `json:"-"`

	MerchDIB        int     `json:"merch_dib"`
	MerchHeight     int     `json:"merch_height"`
	HDR             float64 `json:"hdr"`
	BasalArea       float64 `json:"basal_area"`
	RelativeDensity float64 `json:"relative_density"`

	TPA       float64 `json:"tpa"`
	BAPerAcre float64 `json:"ba_ac"`
	RDPerAcre float64 `json:"rd_ac"`

	// Cruise is set when the logs came from AutoCruise
	Cruise *Cruise `json:"cruise,omitempty"`
	Logs   []Log   `json:"logs"`

	GrossBF        int     `json:"gross_bf"`
	NetBF          int     `json:"net_bf"`
	GrossCF        float64 `json:"gross_cf"`
	NetCF          float64 `json:"net_cf"`
	GrossBFPerAcre float64 `json:"gross_bf_ac"`
	NetBFPerAcre   float64 `json:"net_bf_ac"`
	GrossCFPerAcre float64 `json:"gross_cf_ac"`
	NetCFPerAcre   float64 `json:"net_cf_ac"`
	// VBAR and CBAR are net board and cubic feet per square foot of basal area
	VBAR float64 `json:"vbar"`
	CBAR float64 `json:"cbar"`
}

// Option configures a Stem built by New
type Option func(*options)

type options struct {
	plotFactor float64
	cruise     *Cruise
}

// WithPlotFactor sets the plot factor used for per-acre expansion
func WithPlotFactor(pf float64) Option {
	return func(o *options) {
		o.plotFactor = pf
	}
}

// WithAutoCruise bucks the stem into logs with the given settings
func WithAutoCruise(c Cruise) Option {
	return func(o *options) {
		o.cruise = &c
	}
}

// New evaluates the species' taper equation for the tree and computes its
// merchantable DIB and height, per-acre expansion and, when asked, its logs
func New(sp species.Species, dbh, totalHeight float64, opts ...Option) (*Stem, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	profile, err := sp.Profile(dbh, totalHeight)
	if err != nil {
		return nil, err
	}

	s := &Stem{
		Species:     sp,
		DBH:         dbh,
		TotalHeight: totalHeight,
		Profile:     profile,
		PlotFactor:  o.plotFactor,
		Buckets:     BucketByDIB(profile),
		Logs:        []Log{},
	}

	s.HDR = totalHeight / (dbh / 12)
	s.BasalArea = dbh * dbh * BasalAreaFactor
	s.RelativeDensity = s.BasalArea / math.Pow(dbh, 0.5)
	s.TPA, s.BAPerAcre, s.RDPerAcre = PerAcre(s.PlotFactor, s.BasalArea, s.RelativeDensity)

	s.MerchDIB, err = MerchDIB(profile)
	if err != nil {
		return nil, err
	}
	s.MerchHeight, err = MerchHeight(s.Buckets, s.MerchDIB)
	if err != nil {
		return nil, err
	}

	if o.cruise != nil {
		if err := s.AutoCruise(*o.cruise); err != nil {
			return nil, fmt.Errorf("auto cruise: %w", err)
		}
	}
	return s, nil
}

// PerAcre expands one tree to trees, basal area and relative density per
// acre. A positive plot factor is a basal area factor; a negative one is
// the inverse plot area.
func PerAcre(plotFactor, basalArea, relativeDensity float64) (tpa, baAc, rdAc float64) {
	switch {
	case plotFactor > 0:
		tpa = plotFactor / basalArea
		baAc = plotFactor
	case plotFactor < 0:
		tpa = math.Abs(plotFactor)
		baAc = tpa * basalArea
	default:
		return 0, 0, 0
	}
	return tpa, baAc, tpa * relativeDensity
}

// AddLog scales a log whose top sits at stemHeight and adds it to the stem.
// An empty grade is assigned from the species' grading rules; defect is a
// whole-number percentage.
func (s *Stem) AddLog(stemHeight, length int, grade string, defect int) error {
	l, err := s.newLog(stemHeight, length, grade, defect)
	if err != nil {
		return err
	}
	l.Number = len(s.Logs) + 1
	s.Logs = append(s.Logs, l)
	s.sumVolumes()
	return nil
}

func (s *Stem) sumVolumes() {
	s.GrossBF, s.NetBF, s.GrossCF, s.NetCF = 0, 0, 0, 0
	for _, l := range s.Logs {
		s.GrossBF += l.GrossBF
		s.NetBF += l.NetBF
		s.GrossCF += l.GrossCF
		s.NetCF += l.NetCF
	}
	s.GrossBFPerAcre = float64(s.GrossBF) * s.TPA
	s.NetBFPerAcre = float64(s.NetBF) * s.TPA
	s.GrossCFPerAcre = s.GrossCF * s.TPA
	s.NetCFPerAcre = s.NetCF * s.TPA
	s.VBAR = float64(s.NetBF) / s.BasalArea
	s.CBAR = s.NetCF / s.BasalArea
}

// BucketByDIB groups the profile's stem heights by whole-inch DIB
func BucketByDIB(profile taper.Profile) map[int][]int {
	buckets := make(map[int][]int)
	for _, pt := range profile {
		buckets[pt.DIBInt] = append(buckets[pt.DIBInt], pt.Height)
	}
	return buckets
}

// MerchDIB returns 40% of the whole-inch DIB at form height, rounded down
func MerchDIB(profile taper.Profile) (int, error) {
	pt, ok := profile.At(FormHeight)
	if !ok {
		return 0, fmt.Errorf("%w: profile has %d heights", ErrBelowFormHeight, len(profile))
	}
	return taper.WholeInches(math.Floor(MerchFraction * float64(pt.DIBInt))), nil
}

// MerchHeight returns the highest stem height whose whole-inch DIB equals merchDIB
func MerchHeight(buckets map[int][]int, merchDIB int) (int, error) {
	heights := buckets[merchDIB]
	if len(heights) == 0 {
		return 0, fmt.Errorf("%w: %d in", ErrNoMerchHeight, merchDIB)
	}
	return heights[len(heights)-1], nil
}
