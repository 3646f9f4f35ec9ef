package repository

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race              RaceRepository
	Team              TeamRepository
	Driver            DriverRepository
	Roster            RosterRepository
	RaceResult        RaceResultRepository
	Prediction        PredictionRepository
	DriverPoints      DriverPointsRepository
	ConstructorPoints ConstructorPointsRepository
	RacePoints        RacePointsRepository
	Profile           ProfileRepository
	Tx                Transactor
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:              NewPostgresRaceRepository(db),
		Team:              NewPostgresTeamRepository(db),
		Driver:            NewPostgresDriverRepository(db),
		Roster:            NewPostgresRosterRepository(db),
		RaceResult:        NewPostgresRaceResultRepository(db),
		Prediction:        NewPostgresPredictionRepository(db),
		DriverPoints:      NewPostgresDriverPointsRepository(db),
		ConstructorPoints: NewPostgresConstructorPointsRepository(db),
		RacePoints:        NewPostgresRacePointsRepository(db),
		Profile:           NewPostgresProfileRepository(db),
		Tx:                db,
	}, nil
}

func upsertError(table, key string, err error) error {
	return &models.UpsertError{Table: table, Key: key, Err: err}
}

// ensureID gives a new row an id. On conflict the stored id wins, so the
// value is only kept for first inserts.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
