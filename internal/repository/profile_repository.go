package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *database.DB
}

// NewPostgresProfileRepository creates a new profile repository
func NewPostgresProfileRepository(db *database.DB) ProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// Upsert creates a profile or renames it; points are never written here
func (r *PostgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, profile.UserID, profile.Username); err != nil {
		return upsertError("profiles", profile.UserID, err)
	}
	return nil
}

// GetByUserID retrieves a profile
func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT user_id, username, points, updated_at FROM profiles WHERE user_id = $1`

	p := &models.Profile{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Username, &p.Points, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// List retrieves all profiles
func (r *PostgresProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	query := `SELECT user_id, username, points, updated_at FROM profiles ORDER BY user_id ASC`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.UserID, &p.Username, &p.Points, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// RecomputePoints rewrites the cached total from race_points in one statement
func (r *PostgresProfileRepository) RecomputePoints(ctx context.Context, userID string) (int, error) {
	query := `
		INSERT INTO profiles (user_id, points)
		SELECT $1, COALESCE(SUM(total_points), 0) FROM race_points WHERE user_id = $1
		ON CONFLICT (user_id) DO UPDATE SET points = EXCLUDED.points, updated_at = NOW()
		RETURNING points
	`

	var points int
	if err := r.db.Querier(ctx).QueryRow(ctx, query, userID).Scan(&points); err != nil {
		return 0, upsertError("profiles", userID, err)
	}
	return points, nil
}
