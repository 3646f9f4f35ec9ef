package models

import (
	"time"
)

// Race represents a championship round
type Race struct {
	ID             string    `db:"id" json:"id" validate:"required"`
	Name           string    `db:"name" json:"name" validate:"required"`
	Date           time.Time `db:"date" json:"date" validate:"required"`
	QualifyingDate time.Time `db:"qualifying_date" json:"qualifying_date" validate:"required"`
	Circuit        string    `db:"circuit" json:"circuit"`
	Country        string    `db:"country" json:"country"`
	Valid          bool      `db:"valid" json:"valid"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PredictionsOpen reports whether predictions may still be submitted at now.
// The qualifying session start is the deadline.
func (r *Race) PredictionsOpen(now time.Time) bool {
	return now.Before(r.QualifyingDate)
}
