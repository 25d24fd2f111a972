package database

import (
	"time"

	"github.com/chrissnell/timbercruise/pkg/taper"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

// ProfileRun is one evaluation of a taper equation for a tree
type ProfileRun struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	SpeciesCode  string             `gorm:"column:species_code;index" json:"species_code,omitempty"`
	Model        string             `gorm:"column:model;not null" json:"model"`
	DBH          float64            `gorm:"column:dbh;not null" json:"dbh"`
	TotalHeight  float64            `gorm:"column:total_height;not null" json:"total_height"`
	Coefficients pgtype.Float8Array `gorm:"column:coefficients;type:double precision[]" json:"-"`
	CreatedAt    time.Time          `gorm:"column:created_at;index" json:"created_at"`
	Points       []ProfilePoint     `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"points,omitempty"`
}

// TableName specifies the table name for ProfileRun
func (ProfileRun) TableName() string {
	return "taper_profile_runs"
}

// ProfilePoint is the DIB at one stem height of a ProfileRun
type ProfilePoint struct {
	RunID        uuid.UUID `gorm:"type:uuid;primaryKey;column:run_id" json:"-"`
	Height       int       `gorm:"primaryKey;column:height" json:"height"`
	DIBInt       int       `gorm:"column:dib_int" json:"dib_int"`
	DIB          float64   `gorm:"column:dib" json:"dib"`
	DIBConverted float64   `gorm:"column:dib_converted" json:"dib_converted"`
}

// TableName specifies the table name for ProfilePoint
func (ProfilePoint) TableName() string {
	return "taper_profile_points"
}

// NewProfileRun builds a run record, with a fresh ID, from an evaluated profile
func NewProfileRun(speciesCode string, model taper.Model, dbh, totalHeight float64, coefficients []float64, profile taper.Profile) (*ProfileRun, error) {
	run := &ProfileRun{
		ID:          uuid.New(),
		SpeciesCode: speciesCode,
		Model:       model.String(),
		DBH:         dbh,
		TotalHeight: totalHeight,
		CreatedAt:   time.Now().UTC(),
		Points:      make([]ProfilePoint, len(profile)),
	}

	if err := run.Coefficients.Set(coefficients); err != nil {
		return nil, err
	}

	for i, pt := range profile {
		run.Points[i] = ProfilePoint{
			RunID:        run.ID,
			Height:       pt.Height,
			DIBInt:       pt.DIBInt,
			DIB:          pt.DIB,
			DIBConverted: pt.DIBConverted,
		}
	}
	return run, nil
}

// CoefficientValues returns the run's coefficients as a plain slice
func (r *ProfileRun) CoefficientValues() []float64 {
	var values []float64
	if err := r.Coefficients.AssignTo(&values); err != nil {
		return nil
	}
	return values
}

// Profile converts the stored points back into a taper profile
func (r *ProfileRun) Profile() taper.Profile {
	profile := make(taper.Profile, len(r.Points))
	for i, pt := range r.Points {
		profile[i] = taper.Point{
			Height:       pt.Height,
			DIBInt:       pt.DIBInt,
			DIB:          pt.DIB,
			DIBConverted: pt.DIBConverted,
		}
	}
	return profile
}
