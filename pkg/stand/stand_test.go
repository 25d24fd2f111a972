package stand

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/stem"
)

var approx = cmp.Options{cmpopts.EquateApprox(1e-9, 1e-9), cmpopts.EquateNaNs()}

type tree struct {
	code        string
	dbh, height float64
}

// testStand builds a two-plot stand on 40 BAF plots with default auto-cruise
func testStand(t *testing.T) *Stand {
	t.Helper()
	s := New("north unit", 12.5, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	for _, trees := range [][]tree{
		{{"DF", 20, 100}, {"DF", 24.5, 123}, {"RA", 12, 70}},
		{{"DF", 18, 90}, {"WH", 16, 85}},
	} {
		p := NewPlot(0, 40)
		for _, tr := range trees {
			sp, err := species.Lookup(tr.code)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := p.AddTree(sp, tr.dbh, tr.height, stem.WithAutoCruise(stem.DefaultCruise)); err != nil {
				t.Fatalf("AddTree %v: %v", tr, err)
			}
		}
		s.AddPlot(p)
	}
	return s
}

func TestNew(t *testing.T) {
	s := testStand(t)

	if s.Name != "NORTH UNIT" {
		t.Errorf("Name = %q, expected NORTH UNIT", s.Name)
	}
	for i, p := range s.Plots {
		if p.Number != i+1 {
			t.Errorf("plot %d numbered %d", i, p.Number)
		}
	}
	if got := len(s.Trees()); got != 5 {
		t.Errorf("Trees = %d, expected 5", got)
	}
}

func TestPlotAddTree(t *testing.T) {
	df, err := species.Lookup("DF")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlot(3, 40)
	tr, err := p.AddTree(df, 20, 100, stem.WithAutoCruise(stem.DefaultCruise))
	if err != nil {
		t.Fatal(err)
	}

	if tr.PlotFactor != 40 {
		t.Errorf("PlotFactor = %v, expected 40", tr.PlotFactor)
	}
	if tr.NetBF != 255 {
		t.Errorf("NetBF = %d, expected 255", tr.NetBF)
	}

	sum := p.Summary()
	want := Metrics{
		TPA:            18.335166850018336,
		BAPerAcre:      40,
		RDPerAcre:      tr.RDPerAcre,
		QMD:            20,
		TotalHeight:    100,
		MerchHeight:    80,
		HDR:            60,
		NetBFPerAcre:   255 * 18.335166850018336,
		NetCFPerAcre:   tr.NetCF * 18.335166850018336,
		GrossBFPerAcre: 255 * 18.335166850018336,
		GrossCFPerAcre: tr.GrossCF * 18.335166850018336,
		VBAR:           255 * 18.335166850018336 / 40,
		CBAR:           tr.NetCF * 18.335166850018336 / 40,
	}
	if diff := cmp.Diff(want, sum.Metrics, approx); diff != "" {
		t.Errorf("plot summary mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.AddTree(df, 20, 10); err == nil {
		t.Error("expected error for a tree below form height")
	}
	if len(p.Trees) != 1 {
		t.Errorf("failed tree was added: %d trees", len(p.Trees))
	}
}

func TestSummary(t *testing.T) {
	got := testStand(t).Summary()

	if got.Group != Totals || got.Trees != 5 {
		t.Errorf("Group, Trees = %q, %d", got.Group, got.Trees)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"tpa", got.TPA, 66.38462306191576},
		{"ba_ac", got.BAPerAcre, 100},
		{"qmd", got.QMD, 16.619145358597752},
		{"net_bf_ac", got.NetBFPerAcre, 12518.052531984431},
		{"net_cf_ac", got.NetCFPerAcre, 1554.168193589605},
		{"vbar", got.VBAR, 125.1805253198443},
		{"total_height", got.TotalHeight, 93.6},
		{"merch_height", got.MerchHeight, 77},
	}
	for _, c := range checks {
		if !cmp.Equal(c.got, c.want, approx) {
			t.Errorf("%s = %v, expected %v", c.name, c.got, c.want)
		}
	}
}

func TestSpeciesSummary(t *testing.T) {
	rows := testStand(t).SpeciesSummary()

	var groups []string
	for _, r := range rows {
		groups = append(groups, r.Group)
	}
	if diff := cmp.Diff([]string{"DF", "WH", "RA", Totals}, groups); diff != "" {
		t.Fatalf("species order mismatch (-want +got):\n%s", diff)
	}

	df := rows[0]
	if df.Trees != 3 {
		t.Errorf("DF trees = %d, expected 3", df.Trees)
	}
	if !cmp.Equal(df.TPA, 26.594764446424577, approx) {
		t.Errorf("DF tpa = %v", df.TPA)
	}
	if !cmp.Equal(df.BAPerAcre, 60.0, approx) {
		t.Errorf("DF ba_ac = %v", df.BAPerAcre)
	}
	if !cmp.Equal(df.QMD, 20.33854985492663, approx) {
		t.Errorf("DF qmd = %v", df.QMD)
	}
	if !cmp.Equal(df.VBAR, 136.1901396138029, approx) {
		t.Errorf("DF vbar = %v", df.VBAR)
	}
}

func TestDBHClassSummary(t *testing.T) {
	rows := testStand(t).DBHClassSummary()

	var groups []string
	for _, r := range rows {
		groups = append(groups, r.Group)
	}
	want := []string{"12-14", "16-18", "18-20", "20-22", "24-26", Totals}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("class order mismatch (-want +got):\n%s", diff)
	}

	wh := rows[1]
	if !cmp.Equal(wh.QMD, 16.0, approx) || !cmp.Equal(wh.BAPerAcre, 20.0, approx) {
		t.Errorf("16-18 qmd, ba_ac = %v, %v", wh.QMD, wh.BAPerAcre)
	}
}

func TestEmptySummary(t *testing.T) {
	s := New("empty", 1, time.Time{})
	if diff := cmp.Diff(Metrics{}, s.Summary().Metrics); diff != "" {
		t.Errorf("empty summary mismatch (-want +got):\n%s", diff)
	}
	if rows := s.LogSummary(); len(rows) != 0 {
		t.Errorf("LogSummary = %v, expected none", rows)
	}
}

func TestStatistics(t *testing.T) {
	stats := testStand(t).Statistics()

	if len(stats) != 4*len(statMetrics) {
		t.Fatalf("got %d statistics, expected %d", len(stats), 4*len(statMetrics))
	}

	find := func(code, metric string) Statistics {
		for _, st := range stats {
			if st.Species == code && st.Metric == metric {
				return st
			}
		}
		t.Fatalf("no %s %s statistics", code, metric)
		return Statistics{}
	}

	tests := []struct {
		name string
		got  Statistics
		want Statistics
	}{
		{
			name: "all species tpa",
			got:  find(Totals, "tpa"),
			want: Statistics{
				Species: Totals, Metric: "tpa", Plots: 2, Sufficient: true,
				Mean:          66.38462306191576,
				Variance:      456.0149506917176,
				StdDev:        21.35450656633671,
				StdErr:        15.099916401949343,
				StdErrPercent: 22.746105506791714,
				Low:           51.3,
				High:          81.4845394638651,
			},
		},
		{
			name: "douglas-fir net board feet",
			got:  find("DF", "net_bf_ac"),
			want: Statistics{
				Species: "DF", Metric: "net_bf_ac", Plots: 2, Sufficient: true,
				Mean:          8171.408376828174,
				Variance:      23054909.93404281,
				StdDev:        4801.552866942403,
				StdErr:        3395.2105924406815,
				StdErrPercent: 41.549882662437334,
				Low:           4776.2,
				High:          11566.618969268857,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got, cmpopts.EquateApprox(1e-9, 1e-6)); diff != "" {
				t.Errorf("statistics mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// RA only grows on plot 1, so plot 2 is a zero sample
	ra := find("RA", "tpa")
	if !cmp.Equal(ra.Mean, 50.93101902782871/2, approx) || ra.Low != 0 {
		t.Errorf("RA tpa mean, low = %v, %v", ra.Mean, ra.Low)
	}
}

func TestStatisticsSinglePlot(t *testing.T) {
	s := testStand(t)
	s.Plots = s.Plots[:1]

	for _, st := range s.Statistics() {
		if st.Sufficient {
			t.Errorf("%s %s: sufficient with one plot", st.Species, st.Metric)
		}
		if math.IsNaN(st.Mean) {
			t.Errorf("%s %s: mean is NaN", st.Species, st.Metric)
		}
		if !math.IsNaN(st.StdErr) || !math.IsNaN(st.Low) {
			t.Errorf("%s %s: stderr, low = %v, %v, expected NaN", st.Species, st.Metric, st.StdErr, st.Low)
		}
	}
}

func TestLogSummary(t *testing.T) {
	rows := testStand(t).LogSummary()

	type rowKey struct{ species, grade string }
	var keys []rowKey
	for _, r := range rows {
		keys = append(keys, rowKey{r.Species, r.Grade})
	}
	wantKeys := []rowKey{
		{"DF", "SM"}, {"DF", "S2"}, {"DF", "S3"}, {"DF", "S4"}, {"DF", "UT"}, {"DF", Totals},
		{"WH", "S3"}, {"WH", "S4"}, {"WH", Totals},
		{"RA", "S4"}, {"RA", "UT"}, {"RA", Totals},
		{Totals, Totals},
	}
	if diff := cmp.Diff(wantKeys, keys, cmp.AllowUnexported(rowKey{})); diff != "" {
		t.Fatalf("row order mismatch (-want +got):\n%s", diff)
	}

	dfS3 := rows[2]
	want := LogCell{LPA: 26.594764446424577, NetBFPerAcre: 3495.405051497655, NetCFPerAcre: 431.78890136825703}
	if diff := cmp.Diff(want, dfS3.Lengths[3], approx); diff != "" {
		t.Errorf("DF S3 31-40 ft mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, dfS3.Total, approx); diff != "" {
		t.Errorf("DF S3 total mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(LogCell{}, dfS3.Lengths[2]); diff != "" {
		t.Errorf("DF S3 21-30 ft should be empty (-want +got):\n%s", diff)
	}

	dfTotal := rows[5]
	wantDF := []LogCell{
		{},
		{},
		{LPA: 11.318004228406382, NetBFPerAcre: 362.1761353090042, NetCFPerAcre: 48.71975308641977},
		{LPA: 47.980701457451794, NetBFPerAcre: 7809.23224151917, NetCFPerAcre: 951.5257553180002},
		{},
	}
	if diff := cmp.Diff(wantDF, dfTotal.Lengths, approx); diff != "" {
		t.Errorf("DF totals by length mismatch (-want +got):\n%s", diff)
	}

	all := rows[len(rows)-1].Total
	wantAll := LogCell{LPA: 138.87842291684055, NetBFPerAcre: 12518.052531984433, NetCFPerAcre: 1554.1681935896054}
	if diff := cmp.Diff(wantAll, all, cmpopts.EquateApprox(1e-9, 1e-6)); diff != "" {
		t.Errorf("stand totals mismatch (-want +got):\n%s", diff)
	}
}

func TestReport(t *testing.T) {
	r := testStand(t).Report()
	if r.Stand != "NORTH UNIT" || r.Plots != 2 || r.Trees != 5 {
		t.Errorf("Stand, Plots, Trees = %q, %d, %d", r.Stand, r.Plots, r.Trees)
	}
	if len(r.Species) != 4 || len(r.DBHClasses) != 6 || len(r.Logs) != 13 {
		t.Errorf("species, dbh classes, logs = %d, %d, %d", len(r.Species), len(r.DBHClasses), len(r.Logs))
	}
}
