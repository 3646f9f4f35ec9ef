package models

import (
	"time"
)

// RaceResult holds the official classification for a race
type RaceResult struct {
	ID                string    `db:"id" json:"id"`
	RaceID            string    `db:"race_id" json:"race_id" validate:"required"`
	QualifyingResults []string  `db:"qualifying_results" json:"qualifying_results" validate:"max=20,unique,dive,required"`
	RaceResults       []string  `db:"race_results" json:"race_results" validate:"max=20,unique,dive,required"`
	PoleTime          string    `db:"pole_time" json:"pole_time" validate:"omitempty,laptime"`
	FastestLap        string    `db:"fastest_lap" json:"fastest_lap"`
	DNFDrivers        []string  `db:"dnf_drivers" json:"dnf_drivers" validate:"max=20,unique,dive,required"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// HasClassification reports whether the finishing order has been entered
func (rr *RaceResult) HasClassification() bool {
	return rr != nil && len(rr.RaceResults) > 0
}
