package taper

import (
	"errors"
	"math"
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"czaplewski", ModelCzaplewski, false},
		{"Kozak1969", ModelKozak1969, false},
		{"kozak-1988", ModelKozak1988, false},
		{"WENSEL", ModelWensel, false},
		{"kozak_1969", ModelKozak1969, false},
		{"max-burkhart", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModel) {
					t.Errorf("expected ErrUnknownModel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseModel(%q) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModelArity(t *testing.T) {
	want := map[Model]int{
		ModelCzaplewski: 6,
		ModelKozak1969:  3,
		ModelKozak1988:  9,
		ModelWensel:     5,
	}
	for _, m := range Models() {
		if m.Arity() != want[m] {
			t.Errorf("%v.Arity() = %d, expected %d", m, m.Arity(), want[m])
		}
	}
	if Model(42).Arity() != 0 {
		t.Error("unknown model should have arity 0")
	}
}

func TestModelText(t *testing.T) {
	for _, m := range Models() {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", m, err)
		}
		var back Model
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != m {
			t.Errorf("text round trip of %v gave %v", m, back)
		}
	}
	if _, err := Model(0).MarshalText(); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel for zero model, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	direct := Kozak1969(15, 60, 2, -1, 0.1)
	viaEvaluate, err := Evaluate(ModelKozak1969, 15, 60, []float64{2, -1, 0.1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(direct) != len(viaEvaluate) {
		t.Fatalf("length mismatch: %d vs %d", len(direct), len(viaEvaluate))
	}
	for i := range direct {
		if direct[i] != viaEvaluate[i] {
			t.Errorf("point %d: %+v != %+v", i, direct[i], viaEvaluate[i])
		}
	}

	dib, err := EvaluateAt(ModelWensel, 32, 140, 17, []float64{0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019})
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if dib != WenselDIB(32, 140, 17, 0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019) {
		t.Errorf("EvaluateAt disagrees with WenselDIB: %v", dib)
	}
}

func TestEvaluateErrors(t *testing.T) {
	if _, err := Evaluate(ModelCzaplewski, 20, 80, []float64{1, 2, 3}); !errors.Is(err, ErrCoefficientCount) {
		t.Errorf("expected ErrCoefficientCount, got %v", err)
	}
	if _, err := Evaluate(Model(9), 20, 80, []float64{1, 2, 3}); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
	if _, err := EvaluateAt(ModelKozak1988, 20, 80, 10, nil); !errors.Is(err, ErrCoefficientCount) {
		t.Errorf("expected ErrCoefficientCount, got %v", err)
	}
}

func TestCheckTree(t *testing.T) {
	tests := []struct {
		name        string
		dbh, height float64
		wantErr     bool
	}{
		{"ordinary", 20, 120, false},
		{"at cap", 20, MaxTotalHeight, false},
		{"short", 4, 0.5, false},
		{"too tall", 20, MaxTotalHeight + 1, true},
		{"infinite height", 20, math.Inf(1), true},
		{"nan height", 20, math.NaN(), true},
		{"infinite dbh", math.Inf(-1), 80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTree(tt.dbh, tt.height)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckTree(%v, %v) error = %v, wantErr %v", tt.dbh, tt.height, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrTreeBounds) {
				t.Errorf("expected ErrTreeBounds, got %v", err)
			}
		})
	}
}
