package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

// PostgresRaceResultRepository implements RaceResultRepository for PostgreSQL
type PostgresRaceResultRepository struct {
	db *database.DB
}

// NewPostgresRaceResultRepository creates a new race result repository
func NewPostgresRaceResultRepository(db *database.DB) RaceResultRepository {
	return &PostgresRaceResultRepository{db: db}
}

// Upsert stores the result of a race. An existing row keeps its id.
func (r *PostgresRaceResultRepository) Upsert(ctx context.Context, result *models.RaceResult) error {
	query := `
		INSERT INTO race_results (id, race_id, qualifying_results, race_results, pole_time, fastest_lap, dnf_drivers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (race_id) DO UPDATE SET
			qualifying_results = EXCLUDED.qualifying_results,
			race_results = EXCLUDED.race_results,
			pole_time = EXCLUDED.pole_time,
			fastest_lap = EXCLUDED.fastest_lap,
			dnf_drivers = EXCLUDED.dnf_drivers,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	ensureID(&result.ID)
	err := r.db.Querier(ctx).QueryRow(ctx, query,
		result.ID, result.RaceID, nonNil(result.QualifyingResults), nonNil(result.RaceResults),
		result.PoleTime, result.FastestLap, nonNil(result.DNFDrivers),
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return upsertError("race_results", result.RaceID, err)
	}

	return nil
}

// GetByRaceID retrieves the result for a specific race
func (r *PostgresRaceResultRepository) GetByRaceID(ctx context.Context, raceID string) (*models.RaceResult, error) {
	query := `
		SELECT id, race_id, qualifying_results, race_results, pole_time, fastest_lap,
		       dnf_drivers, created_at, updated_at
		FROM race_results
		WHERE race_id = $1
	`

	result := &models.RaceResult{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, raceID).Scan(
		&result.ID, &result.RaceID, &result.QualifyingResults, &result.RaceResults,
		&result.PoleTime, &result.FastestLap, &result.DNFDrivers, &result.CreatedAt, &result.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query race result: %w", err)
	}

	return result, nil
}

// nonNil keeps NOT NULL array columns from receiving NULL
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
