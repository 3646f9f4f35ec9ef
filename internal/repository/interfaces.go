package repository

import (
	"context"

	"github.com/yourusername/pitwall-picks/internal/models"
)

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	Upsert(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id string) (*models.Race, error)
	// List returns every race ordered by date ascending
	List(ctx context.Context) ([]*models.Race, error)
}

// TeamRepository defines the interface for constructor data access
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
}

// DriverRepository defines the interface for driver roster access
type DriverRepository interface {
	Upsert(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	List(ctx context.Context) ([]*models.Driver, error)
}

// RosterRepository stores mid-season team reassignments
type RosterRepository interface {
	Create(ctx context.Context, assignment *models.RosterAssignment) error
	// List returns every assignment ordered by effective_from ascending
	List(ctx context.Context) ([]*models.RosterAssignment, error)
}

// RaceResultRepository defines operations for official race results
type RaceResultRepository interface {
	// Upsert inserts or replaces the single result of a race
	Upsert(ctx context.Context, result *models.RaceResult) error
	GetByRaceID(ctx context.Context, raceID string) (*models.RaceResult, error)
}

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	// Upsert inserts or replaces the prediction keyed by (user_id, race_id)
	Upsert(ctx context.Context, prediction *models.Prediction) error
	GetByUserAndRace(ctx context.Context, userID, raceID string) (*models.Prediction, error)
	ListByRace(ctx context.Context, raceID string) ([]*models.Prediction, error)
}

// DriverPointsRepository stores per-driver per-race championship points
type DriverPointsRepository interface {
	Upsert(ctx context.Context, row *models.DriverRacePoints) error
	// DeleteByRaceExcept removes the race's rows for drivers not in keep
	// and returns how many were removed
	DeleteByRaceExcept(ctx context.Context, raceID string, keep []string) (int, error)
	ListByRace(ctx context.Context, raceID string) ([]*models.DriverRacePoints, error)
	List(ctx context.Context) ([]*models.DriverRacePoints, error)
}

// ConstructorPointsRepository stores per-team per-race championship points
type ConstructorPointsRepository interface {
	Upsert(ctx context.Context, row *models.ConstructorRacePoints) error
	// DeleteByRaceExcept removes the race's rows for teams not in keep
	DeleteByRaceExcept(ctx context.Context, raceID string, keep []string) (int, error)
	ListByRace(ctx context.Context, raceID string) ([]*models.ConstructorRacePoints, error)
	List(ctx context.Context) ([]*models.ConstructorRacePoints, error)
}

// RacePointsRepository stores scored prediction breakdowns
type RacePointsRepository interface {
	// Upsert inserts or replaces the row keyed by (race_id, prediction_id)
	Upsert(ctx context.Context, row *models.RacePoints) error
	ListByRace(ctx context.Context, raceID string) ([]*models.RacePoints, error)
	List(ctx context.Context) ([]*models.RacePoints, error)
}

// ProfileRepository defines participant profile access
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	// RecomputePoints sets the profile total to the sum of all the user's
	// race points and returns the new value.
	RecomputePoints(ctx context.Context, userID string) (int, error)
}

// Transactor runs fn so that repository calls made with its context share
// one transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
