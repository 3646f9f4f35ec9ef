package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

const predictionColumns = `id, user_id, race_id, pole_position, pole_time, qualifying_results,
		       top_10, fastest_lap, dnf_predictions, created_at, updated_at`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Upsert stores a prediction; a resubmission replaces the picks in place
func (r *PostgresPredictionRepository) Upsert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, user_id, race_id, pole_position, pole_time, qualifying_results,
		                         top_10, fastest_lap, dnf_predictions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, race_id) DO UPDATE SET
			pole_position = EXCLUDED.pole_position,
			pole_time = EXCLUDED.pole_time,
			qualifying_results = EXCLUDED.qualifying_results,
			top_10 = EXCLUDED.top_10,
			fastest_lap = EXCLUDED.fastest_lap,
			dnf_predictions = EXCLUDED.dnf_predictions,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	ensureID(&p.ID)
	err := r.db.Querier(ctx).QueryRow(ctx, query,
		p.ID, p.UserID, p.RaceID, p.PolePosition, p.PoleTime, nonNil(p.QualifyingResults),
		nonNil(p.Top10), p.FastestLap, nonNil(p.DNFPredictions),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return upsertError("predictions", p.UserID+"/"+p.RaceID, err)
	}

	return nil
}

// GetByUserAndRace retrieves a user's prediction for a race
func (r *PostgresPredictionRepository) GetByUserAndRace(ctx context.Context, userID, raceID string) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 AND race_id = $2`

	p, err := scanPrediction(r.db.Querier(ctx).QueryRow(ctx, query, userID, raceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// ListByRace retrieves every prediction for a race
func (r *PostgresPredictionRepository) ListByRace(ctx context.Context, raceID string) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE race_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Querier(ctx).Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.RaceID, &p.PolePosition, &p.PoleTime, &p.QualifyingResults,
		&p.Top10, &p.FastestLap, &p.DNFPredictions, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
