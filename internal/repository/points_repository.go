package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

// PostgresDriverPointsRepository implements DriverPointsRepository for PostgreSQL
type PostgresDriverPointsRepository struct {
	db *database.DB
}

// NewPostgresDriverPointsRepository creates a new driver points repository
func NewPostgresDriverPointsRepository(db *database.DB) DriverPointsRepository {
	return &PostgresDriverPointsRepository{db: db}
}

// Upsert writes the row for (driver_id, race_id)
func (r *PostgresDriverPointsRepository) Upsert(ctx context.Context, row *models.DriverRacePoints) error {
	query := `
		INSERT INTO driver_race_points (driver_id, race_id, position, points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id, race_id) DO UPDATE SET
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.Querier(ctx).QueryRow(ctx, query, row.DriverID, row.RaceID, row.Position, row.Points).
		Scan(&row.UpdatedAt)
	if err != nil {
		return upsertError("driver_race_points", row.DriverID+"/"+row.RaceID, err)
	}
	return nil
}

// DeleteByRaceExcept drops rows of drivers no longer classified in the race
func (r *PostgresDriverPointsRepository) DeleteByRaceExcept(ctx context.Context, raceID string, keep []string) (int, error) {
	query := `DELETE FROM driver_race_points WHERE race_id = $1 AND NOT (driver_id = ANY($2))`

	tag, err := r.db.Querier(ctx).Exec(ctx, query, raceID, nonNil(keep))
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale driver points: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListByRace retrieves the rows of one race ordered by position
func (r *PostgresDriverPointsRepository) ListByRace(ctx context.Context, raceID string) ([]*models.DriverRacePoints, error) {
	return r.list(ctx, `WHERE race_id = $1 ORDER BY position ASC`, raceID)
}

// List retrieves every row
func (r *PostgresDriverPointsRepository) List(ctx context.Context) ([]*models.DriverRacePoints, error) {
	return r.list(ctx, `ORDER BY race_id ASC, position ASC`)
}

func (r *PostgresDriverPointsRepository) list(ctx context.Context, clause string, args ...any) ([]*models.DriverRacePoints, error) {
	query := `SELECT driver_id, race_id, position, points, updated_at FROM driver_race_points ` + clause

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query driver points: %w", err)
	}
	defer rows.Close()

	var out []*models.DriverRacePoints
	for rows.Next() {
		p := &models.DriverRacePoints{}
		if err := rows.Scan(&p.DriverID, &p.RaceID, &p.Position, &p.Points, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan driver points: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// PostgresConstructorPointsRepository implements ConstructorPointsRepository for PostgreSQL
type PostgresConstructorPointsRepository struct {
	db *database.DB
}

// NewPostgresConstructorPointsRepository creates a new constructor points repository
func NewPostgresConstructorPointsRepository(db *database.DB) ConstructorPointsRepository {
	return &PostgresConstructorPointsRepository{db: db}
}

// Upsert writes the row for (team_id, race_id)
func (r *PostgresConstructorPointsRepository) Upsert(ctx context.Context, row *models.ConstructorRacePoints) error {
	query := `
		INSERT INTO constructor_race_points (team_id, race_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, race_id) DO UPDATE SET
			points = EXCLUDED.points,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.Querier(ctx).QueryRow(ctx, query, row.TeamID, row.RaceID, row.Points).Scan(&row.UpdatedAt)
	if err != nil {
		return upsertError("constructor_race_points", row.TeamID+"/"+row.RaceID, err)
	}
	return nil
}

// DeleteByRaceExcept drops rows of teams that no longer score in the race
func (r *PostgresConstructorPointsRepository) DeleteByRaceExcept(ctx context.Context, raceID string, keep []string) (int, error) {
	query := `DELETE FROM constructor_race_points WHERE race_id = $1 AND NOT (team_id = ANY($2))`

	tag, err := r.db.Querier(ctx).Exec(ctx, query, raceID, nonNil(keep))
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale constructor points: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListByRace retrieves the rows of one race
func (r *PostgresConstructorPointsRepository) ListByRace(ctx context.Context, raceID string) ([]*models.ConstructorRacePoints, error) {
	return r.list(ctx, `WHERE race_id = $1 ORDER BY points DESC, team_id ASC`, raceID)
}

// List retrieves every row
func (r *PostgresConstructorPointsRepository) List(ctx context.Context) ([]*models.ConstructorRacePoints, error) {
	return r.list(ctx, `ORDER BY race_id ASC, team_id ASC`)
}

func (r *PostgresConstructorPointsRepository) list(ctx context.Context, clause string, args ...any) ([]*models.ConstructorRacePoints, error) {
	query := `SELECT team_id, race_id, points, updated_at FROM constructor_race_points ` + clause

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query constructor points: %w", err)
	}
	defer rows.Close()

	var out []*models.ConstructorRacePoints
	for rows.Next() {
		p := &models.ConstructorRacePoints{}
		if err := rows.Scan(&p.TeamID, &p.RaceID, &p.Points, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan constructor points: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// PostgresRacePointsRepository implements RacePointsRepository for PostgreSQL
type PostgresRacePointsRepository struct {
	db *database.DB
}

// NewPostgresRacePointsRepository creates a new race points repository
func NewPostgresRacePointsRepository(db *database.DB) RacePointsRepository {
	return &PostgresRacePointsRepository{db: db}
}

// Upsert writes the breakdown for (race_id, prediction_id). An existing row keeps its id.
func (r *PostgresRacePointsRepository) Upsert(ctx context.Context, row *models.RacePoints) error {
	query := `
		INSERT INTO race_points (id, race_id, prediction_id, user_id, qualifying_points, race_points,
		                         pole_time_points, fastest_lap_points, dnf_points, total_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (race_id, prediction_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			qualifying_points = EXCLUDED.qualifying_points,
			race_points = EXCLUDED.race_points,
			pole_time_points = EXCLUDED.pole_time_points,
			fastest_lap_points = EXCLUDED.fastest_lap_points,
			dnf_points = EXCLUDED.dnf_points,
			total_points = EXCLUDED.total_points,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	ensureID(&row.ID)
	err := r.db.Querier(ctx).QueryRow(ctx, query,
		row.ID, row.RaceID, row.PredictionID, row.UserID, row.QualifyingPoints, row.RacePoints,
		row.PoleTimePoints, row.FastestLapPoints, row.DNFPoints, row.TotalPoints,
	).Scan(&row.ID, &row.UpdatedAt)
	if err != nil {
		return upsertError("race_points", row.RaceID+"/"+row.PredictionID, err)
	}
	return nil
}

// ListByRace retrieves the scored rows of one race
func (r *PostgresRacePointsRepository) ListByRace(ctx context.Context, raceID string) ([]*models.RacePoints, error) {
	return r.list(ctx, `WHERE race_id = $1 ORDER BY total_points DESC, user_id ASC`, raceID)
}

// List retrieves every scored row
func (r *PostgresRacePointsRepository) List(ctx context.Context) ([]*models.RacePoints, error) {
	return r.list(ctx, `ORDER BY race_id ASC, user_id ASC`)
}

func (r *PostgresRacePointsRepository) list(ctx context.Context, clause string, args ...any) ([]*models.RacePoints, error) {
	query := `
		SELECT id, race_id, prediction_id, user_id, qualifying_points, race_points,
		       pole_time_points, fastest_lap_points, dnf_points, total_points, updated_at
		FROM race_points ` + clause

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query race points: %w", err)
	}
	defer rows.Close()

	var out []*models.RacePoints
	for rows.Next() {
		p := &models.RacePoints{}
		err := rows.Scan(
			&p.ID, &p.RaceID, &p.PredictionID, &p.UserID, &p.QualifyingPoints, &p.RacePoints,
			&p.PoleTimePoints, &p.FastestLapPoints, &p.DNFPoints, &p.TotalPoints, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race points: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
