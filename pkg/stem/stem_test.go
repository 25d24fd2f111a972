package stem

import (
	"errors"
	"math"
	"testing"

	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/taper"
	"github.com/google/go-cmp/cmp"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func mustLookup(t *testing.T, code string) species.Species {
	t.Helper()
	sp, err := species.Lookup(code)
	if err != nil {
		t.Fatal(err)
	}
	return sp
}

func TestNew(t *testing.T) {
	df := mustLookup(t, "DF")

	s, err := New(df, 20, 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// DIB at 17 ft is 15.3365 -> 15 in; 40% is 6 in
	if s.MerchDIB != 6 {
		t.Errorf("MerchDIB = %d, expected 6", s.MerchDIB)
	}
	if s.MerchHeight != 80 {
		t.Errorf("MerchHeight = %d, expected 80 (last of %v)", s.MerchHeight, s.Buckets[6])
	}
	pt, _ := s.Profile.At(s.MerchHeight)
	if pt.DIBInt != 6 {
		t.Errorf("DIB at merch height = %d, expected 6", pt.DIBInt)
	}

	if math.Abs(s.HDR-60) > 1e-9 {
		t.Errorf("HDR = %v, expected 60", s.HDR)
	}
	if math.Abs(s.BasalArea-2.1816) > 1e-9 {
		t.Errorf("BasalArea = %v, expected 2.1816", s.BasalArea)
	}
	if math.Abs(s.RelativeDensity-2.1816/math.Sqrt(20)) > 1e-9 {
		t.Errorf("RelativeDensity = %v", s.RelativeDensity)
	}
}

func TestBucketByDIB(t *testing.T) {
	profile := taper.Profile{
		{Height: 1, DIBInt: 10},
		{Height: 2, DIBInt: 9},
		{Height: 3, DIBInt: 9},
		{Height: 4, DIBInt: 8},
	}
	buckets := BucketByDIB(profile)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if got := buckets[9]; len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("bucket 9 = %v, expected [2 3]", got)
	}
}

func TestShortTree(t *testing.T) {
	_, err := New(mustLookup(t, "RA"), 6, 16.5)
	if !errors.Is(err, ErrBelowFormHeight) {
		t.Errorf("expected ErrBelowFormHeight, got %v", err)
	}
}

func TestMerchHeightMissing(t *testing.T) {
	_, err := MerchHeight(map[int][]int{5: {30, 31}}, 4)
	if !errors.Is(err, ErrNoMerchHeight) {
		t.Errorf("expected ErrNoMerchHeight, got %v", err)
	}
}

func TestPerAcre(t *testing.T) {
	ba := 20 * 20 * BasalAreaFactor
	rd := ba / math.Sqrt(20)

	tests := []struct {
		name            string
		plotFactor      float64
		wantTPA, wantBA float64
		wantRD          float64
	}{
		{"basal area factor", 40, 40 / ba, 40, 40 / ba * rd},
		{"fixed plot", -20, 20, 20 * ba, 20 * rd},
		{"no plot", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpa, baAc, rdAc := PerAcre(tt.plotFactor, ba, rd)
			if !approxEqual(tpa, tt.wantTPA) || !approxEqual(baAc, tt.wantBA) || !approxEqual(rdAc, tt.wantRD) {
				t.Errorf("PerAcre(%v) = %v, %v, %v; expected %v, %v, %v",
					tt.plotFactor, tpa, baAc, rdAc, tt.wantTPA, tt.wantBA, tt.wantRD)
			}
		})
	}
}

func TestNewWithPlotFactor(t *testing.T) {
	s, err := New(mustLookup(t, "DF"), 20, 100, WithPlotFactor(40))
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(s.TPA, 18.335166850018336) {
		t.Errorf("TPA = %v, expected 18.335166850018336", s.TPA)
	}
	if s.BAPerAcre != 40 {
		t.Errorf("BAPerAcre = %v, expected 40", s.BAPerAcre)
	}
	if !approxEqual(s.RDPerAcre, 8.94427190999916) {
		t.Errorf("RDPerAcre = %v, expected 8.94427190999916", s.RDPerAcre)
	}
	if len(s.Logs) != 0 || s.NetBF != 0 || s.VBAR != 0 {
		t.Errorf("expected no logs or volume without a cruise, got %d logs, %d bf", len(s.Logs), s.NetBF)
	}
}

type logSummary struct {
	StemHeight, Length, TopDIB int
	Grade                      string
	GrossBF                    int
}

func summarizeLogs(logs []Log) []logSummary {
	out := make([]logSummary, len(logs))
	for i, l := range logs {
		out[i] = logSummary{l.StemHeight, l.Length, l.TopDIB, l.Grade, l.GrossBF}
	}
	return out
}

func TestAutoCruise(t *testing.T) {
	tests := []struct {
		name        string
		species     string
		dbh, height float64
		plotFactor  float64
		cruise      Cruise
		want        []logSummary
		wantNetBF   int
		wantNetCF   float64
		wantVBAR    float64
	}{
		{
			name: "douglas-fir two logs", species: "DF", dbh: 20, height: 100, plotFactor: 40,
			cruise: DefaultCruise,
			want: []logSummary{
				{42, 40, 12, "S2", 196},
				{80, 38, 6, "S3", 59},
			},
			wantNetBF: 255, wantNetCF: 33.2534016, wantVBAR: 116.88668866886688,
		},
		{
			name: "douglas-fir utility top", species: "DF", dbh: 24.5, height: 123, plotFactor: -30,
			cruise: DefaultCruise,
			want: []logSummary{
				{42, 40, 16, "SM", 400},
				{83, 40, 10, "S3", 152},
				{115, 32, 3, "UT", 12},
			},
			wantNetBF: 564, wantNetCF: 64.81479059999998, wantVBAR: 172.2787855628545,
		},
		{
			name: "red alder short second log", species: "RA", dbh: 12, height: 70, plotFactor: -20,
			cruise: DefaultCruise,
			want: []logSummary{
				{42, 40, 6, "S4", 62},
				{64, 22, 3, "UT", 8},
			},
			wantNetBF: 70, wantNetCF: 9.14512176, wantVBAR: 89.12928329870024,
		},
		{
			name: "short preferred logs", species: "DF", dbh: 20, height: 100, plotFactor: 40,
			cruise: Cruise{PreferredLength: 32, MinimumLength: 8, UtilityDIB: 3},
			want: []logSummary{
				{34, 32, 13, "S2", 193},
				{67, 32, 9, "S3", 92},
				{80, 12, 6, "S3", 13},
				{92, 12, 3, "UT", 4},
			},
			wantNetBF: 302,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(mustLookup(t, tt.species), tt.dbh, tt.height,
				WithPlotFactor(tt.plotFactor), WithAutoCruise(tt.cruise))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, summarizeLogs(s.Logs)); diff != "" {
				t.Errorf("logs mismatch (-want +got):\n%s", diff)
			}
			if s.NetBF != tt.wantNetBF || s.GrossBF != tt.wantNetBF {
				t.Errorf("board feet = %d gross / %d net, expected %d", s.GrossBF, s.NetBF, tt.wantNetBF)
			}
			if tt.wantNetCF != 0 && !approxEqual(s.NetCF, tt.wantNetCF) {
				t.Errorf("NetCF = %v, expected %v", s.NetCF, tt.wantNetCF)
			}
			if tt.wantVBAR != 0 && !approxEqual(s.VBAR, tt.wantVBAR) {
				t.Errorf("VBAR = %v, expected %v", s.VBAR, tt.wantVBAR)
			}
			if !approxEqual(s.NetBFPerAcre, float64(s.NetBF)*s.TPA) {
				t.Errorf("NetBFPerAcre = %v, expected %v", s.NetBFPerAcre, float64(s.NetBF)*s.TPA)
			}
			for i, l := range s.Logs {
				if l.Number != i+1 || l.LPA != s.TPA {
					t.Errorf("log %d: number %d lpa %v, tree tpa %v", i, l.Number, l.LPA, s.TPA)
				}
			}
			if s.Cruise == nil || *s.Cruise != tt.cruise {
				t.Errorf("Cruise = %v, expected %v", s.Cruise, tt.cruise)
			}
		})
	}
}

func TestAutoCruiseReplacesLogs(t *testing.T) {
	s, err := New(mustLookup(t, "DF"), 20, 100, WithPlotFactor(40))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddLog(30, 28, "S4", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.AutoCruise(DefaultCruise); err != nil {
		t.Fatal(err)
	}
	if len(s.Logs) != 2 || s.NetBF != 255 {
		t.Errorf("expected the cruise to replace manual logs, got %d logs and %d bf", len(s.Logs), s.NetBF)
	}
}

func TestAddLogDefect(t *testing.T) {
	s, err := New(mustLookup(t, "DF"), 20, 100, WithPlotFactor(40))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddLog(42, 40, "", 10); err != nil {
		t.Fatal(err)
	}

	l := s.Logs[0]
	// 10% defect drops the S2 log to S3
	if l.Grade != "S3" || l.GradeName != "SAW 3" {
		t.Errorf("grade = %s (%s), expected S3 (SAW 3)", l.Grade, l.GradeName)
	}
	if l.GrossBF != 196 || l.NetBF != 176 {
		t.Errorf("board feet = %d / %d, expected 196 / 176", l.GrossBF, l.NetBF)
	}
	if !approxEqual(l.NetCF, 23.343959915999996) {
		t.Errorf("NetCF = %v, expected 23.343959915999996", l.NetCF)
	}
	if l.LengthRange != "31 - 40 feet" {
		t.Errorf("LengthRange = %q", l.LengthRange)
	}
	if !approxEqual(s.VBAR, 80.67473414008067) {
		t.Errorf("VBAR = %v, expected 80.67473414008067", s.VBAR)
	}
}

func TestAddLogErrors(t *testing.T) {
	s, err := New(mustLookup(t, "DF"), 20, 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddLog(101, 40, "", 0); !errors.Is(err, ErrLogHeight) {
		t.Errorf("expected ErrLogHeight, got %v", err)
	}
	if err := s.AddLog(40, 38, "Z9", 0); !errors.Is(err, ErrUnknownGrade) {
		t.Errorf("expected ErrUnknownGrade, got %v", err)
	}
	if len(s.Logs) != 0 {
		t.Errorf("failed logs were added: %d", len(s.Logs))
	}

	custom := species.Species{Code: "ZZ", Model: taper.ModelKozak1969, Coefficients: []float64{0.97576, -1.22922, 0.25347}}
	cs, err := New(custom, 14, 80)
	if err != nil {
		t.Fatal(err)
	}
	if err := cs.AddLog(40, 38, "", 0); !errors.Is(err, ErrUngradable) {
		t.Errorf("expected ErrUngradable for a species without grading rules, got %v", err)
	}
	if err := cs.AddLog(40, 38, "saw 3", 0); err != nil {
		t.Errorf("explicit grade on an ungraded species: %v", err)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		species                string
		topDIB, length, defect int
		want                   string
		wantErr                bool
	}{
		{"DF", 26, 40, 0, "P3", false},
		{"DF", 26, 16, 0, "S2", false},
		{"df", 26, 40, 6, "SM", false},
		{"DF", 1, 40, 10, "UT", false},
		{"RC", 30, 16, 0, "S1", false},
		{"CW", 7, 6, 0, "S4", false},
		{"PP", 22, 20, 0, "S3", false},
		{"DF", 0, 40, 0, "", true},
		{"XX", 20, 40, 0, "", true},
	}

	for _, tt := range tests {
		got, err := GradeFor(tt.species, tt.topDIB, tt.length, tt.defect)
		if (err != nil) != tt.wantErr {
			t.Errorf("GradeFor(%s, %d, %d, %d) error = %v", tt.species, tt.topDIB, tt.length, tt.defect, err)
			continue
		}
		if got != tt.want {
			t.Errorf("GradeFor(%s, %d, %d, %d) = %q, expected %q", tt.species, tt.topDIB, tt.length, tt.defect, got, tt.want)
		}
	}
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"s2", "S2"},
		{"2S", "S2"},
		{"saw_2", "S2"},
		{"Special-Mill", "SM"},
		{"utility pulp", "UT"},
		{"peeler.3", "P3"},
	}
	for _, tt := range tests {
		got, err := ParseGrade(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseGrade(%q) = %q, %v; expected %q", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{"", "S7", "saw"} {
		if _, err := ParseGrade(bad); !errors.Is(err, ErrUnknownGrade) {
			t.Errorf("ParseGrade(%q): expected ErrUnknownGrade, got %v", bad, err)
		}
	}
}

func TestScribnerFactor(t *testing.T) {
	tests := []struct {
		topDIB, length int
		want           float64
	}{
		{8, 12, 1.501},
		{8, 16, 1.854},
		{8, 31, 1.854},
		{8, 32, 2.2},
		{8, 0, 2.2},
		{3, 40, 0.39},
		{20, 40, 17.499},
		{120, 40, 695.011},
	}
	for _, tt := range tests {
		got, err := ScribnerFactor(tt.topDIB, tt.length)
		if err != nil || got != tt.want {
			t.Errorf("ScribnerFactor(%d, %d) = %v, %v; expected %v", tt.topDIB, tt.length, got, err, tt.want)
		}
	}

	for _, dib := range []int{-1, 121} {
		if _, err := ScribnerFactor(dib, 40); !errors.Is(err, ErrScribnerRange) {
			t.Errorf("ScribnerFactor(%d): expected ErrScribnerRange, got %v", dib, err)
		}
	}
}

func TestCubicFeet(t *testing.T) {
	// logs under 17 ft use 0.67 of their length
	gross, net := CubicFeet(6, 12, 0)
	if !approxEqual(gross, 1.5081531696000001) || gross != net {
		t.Errorf("CubicFeet(6, 12, 0) = %v, %v; expected 1.5081531696", gross, net)
	}

	gross, net = CubicFeet(12, 40, 50)
	if !approxEqual(gross, 25.937733239999996) || !approxEqual(net, gross/2) {
		t.Errorf("CubicFeet(12, 40, 50) = %v, %v", gross, net)
	}
}

func TestLengthRangeOf(t *testing.T) {
	tests := map[int]string{
		0:    "",
		10:   "<= 10 feet",
		11:   "11 - 20 feet",
		30:   "21 - 30 feet",
		40:   "31 - 40 feet",
		41:   "> 40 feet",
		1000: "",
	}
	for length, want := range tests {
		if got := LengthRangeOf(length); got != want {
			t.Errorf("LengthRangeOf(%d) = %q, expected %q", length, got, want)
		}
	}
}
