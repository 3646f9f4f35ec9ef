package models

import "time"

// DriverRacePoints is the championship score of one driver in one race
type DriverRacePoints struct {
	DriverID  string    `db:"driver_id" json:"driver_id"`
	RaceID    string    `db:"race_id" json:"race_id"`
	Position  int       `db:"position" json:"position"`
	Points    int       `db:"points" json:"points"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ConstructorRacePoints is the championship score of one team in one race
type ConstructorRacePoints struct {
	TeamID    string    `db:"team_id" json:"team_id"`
	RaceID    string    `db:"race_id" json:"race_id"`
	Points    int       `db:"points" json:"points"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RacePoints is the scored breakdown of one prediction
type RacePoints struct {
	ID               string    `db:"id" json:"id"`
	RaceID           string    `db:"race_id" json:"race_id"`
	PredictionID     string    `db:"prediction_id" json:"prediction_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	QualifyingPoints int       `db:"qualifying_points" json:"qualifying_points"`
	RacePoints       int       `db:"race_points" json:"race_points"`
	PoleTimePoints   int       `db:"pole_time_points" json:"pole_time_points"`
	FastestLapPoints int       `db:"fastest_lap_points" json:"fastest_lap_points"`
	DNFPoints        int       `db:"dnf_points" json:"dnf_points"`
	TotalPoints      int       `db:"total_points" json:"total_points"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Profile is a participant with their cached season total
type Profile struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Points    int       `db:"points" json:"points"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
