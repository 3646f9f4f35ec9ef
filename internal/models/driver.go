package models

import "time"

// Team represents a constructor
type Team struct {
	ID     string `db:"id" json:"id" validate:"required"`
	Name   string `db:"name" json:"name" validate:"required"`
	Engine string `db:"engine" json:"engine"`
}

// Driver represents a driver on the season roster
type Driver struct {
	ID     string `db:"id" json:"id" validate:"required"`
	Name   string `db:"name" json:"name" validate:"required"`
	Number int    `db:"number" json:"number" validate:"gte=0"`
	TeamID string `db:"team_id" json:"team_id"`
}

// RosterAssignment moves a driver to another team from EffectiveFrom onwards.
type RosterAssignment struct {
	ID            string    `db:"id" json:"id"`
	DriverID      string    `db:"driver_id" json:"driver_id" validate:"required"`
	TeamID        string    `db:"team_id" json:"team_id" validate:"required"`
	EffectiveFrom time.Time `db:"effective_from" json:"effective_from" validate:"required"`
	Note          string    `db:"note" json:"note"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AppliesAt reports whether the assignment is in force at t
func (a *RosterAssignment) AppliesAt(t time.Time) bool {
	return !a.EffectiveFrom.After(t)
}
