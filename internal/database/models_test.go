package database

import (
	"strings"
	"testing"

	"github.com/chrissnell/timbercruise/pkg/taper"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewProfileRun(t *testing.T) {
	coef := []float64{2.0, -1.0, 0.1}
	profile := taper.Kozak1969(15, 60, coef[0], coef[1], coef[2])

	run, err := NewProfileRun("RA", taper.ModelKozak1969, 15, 60, coef, profile)
	if err != nil {
		t.Fatalf("NewProfileRun: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Error("run ID not assigned")
	}
	if run.Model != "kozak1969" {
		t.Errorf("Model = %q", run.Model)
	}
	if len(run.Points) != 60 {
		t.Fatalf("expected 60 points, got %d", len(run.Points))
	}
	for _, pt := range run.Points {
		if pt.RunID != run.ID {
			t.Fatalf("point %d has run ID %s, expected %s", pt.Height, pt.RunID, run.ID)
		}
	}

	if diff := cmp.Diff(coef, run.CoefficientValues()); diff != "" {
		t.Errorf("coefficients differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(profile, run.Profile()); diff != "" {
		t.Errorf("profile round trip differs (-want +got):\n%s", diff)
	}
}

func TestProfileRunQueries(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=cruise dbname=timber sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	id := uuid.New()
	stmt := db.First(&ProfileRun{}, "id = ?", id).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, `"taper_profile_runs"`) {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if len(stmt.Vars) == 0 || stmt.Vars[0] != id {
		t.Errorf("unexpected vars: %v", stmt.Vars)
	}

	stmt = db.Where("run_id = ?", id).Order("height").Find(&[]ProfilePoint{}).Statement
	if !strings.Contains(stmt.SQL.String(), `"taper_profile_points"`) {
		t.Errorf("unexpected SQL: %s", stmt.SQL.String())
	}
}
