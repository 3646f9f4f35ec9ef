package models

import (
	"time"
)

// Prediction is a participant's pre-race pick for one race
type Prediction struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id" validate:"required"`
	RaceID            string    `db:"race_id" json:"race_id" validate:"required"`
	PolePosition      string    `db:"pole_position" json:"pole_position"`
	PoleTime          string    `db:"pole_time" json:"pole_time" validate:"omitempty,laptime"`
	QualifyingResults []string  `db:"qualifying_results" json:"qualifying_results" validate:"max=20,unique,dive,required"`
	Top10             []string  `db:"top_10" json:"top_10" validate:"max=20,unique,dive,required"`
	FastestLap        string    `db:"fastest_lap" json:"fastest_lap"`
	DNFPredictions    []string  `db:"dnf_predictions" json:"dnf_predictions" validate:"max=20,unique,dive,required"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
