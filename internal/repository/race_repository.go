package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/models"
)

const (
	errScanRace  = "failed to scan race: %w"
	errScanTeam  = "failed to scan team: %w"
	errScanDrive = "failed to scan driver: %w"

	raceColumns = `id, name, date, qualifying_date, circuit, country, valid, created_at, updated_at`
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Upsert inserts a race or updates its metadata
func (r *PostgresRaceRepository) Upsert(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, name, date, qualifying_date, circuit, country, valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			date = EXCLUDED.date,
			qualifying_date = EXCLUDED.qualifying_date,
			circuit = EXCLUDED.circuit,
			country = EXCLUDED.country,
			valid = EXCLUDED.valid,
			updated_at = NOW()
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		race.ID, race.Name, race.Date, race.QualifyingDate, race.Circuit, race.Country, race.Valid,
	)
	if err != nil {
		return upsertError("races", race.ID, err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id string) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	race := &models.Race{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(
		&race.ID, &race.Name, &race.Date, &race.QualifyingDate, &race.Circuit,
		&race.Country, &race.Valid, &race.CreatedAt, &race.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// List retrieves all races ordered by date
func (r *PostgresRaceRepository) List(ctx context.Context) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races ORDER BY date ASC, id ASC`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		err := rows.Scan(
			&race.ID, &race.Name, &race.Date, &race.QualifyingDate, &race.Circuit,
			&race.Country, &race.Valid, &race.CreatedAt, &race.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}

	return races, rows.Err()
}

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts or updates a team
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, engine) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, engine = EXCLUDED.engine
	`

	if _, err := r.db.Querier(ctx).Exec(ctx, query, team.ID, team.Name, team.Engine); err != nil {
		return upsertError("teams", team.ID, err)
	}
	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT id, name, engine FROM teams WHERE id = $1`, id).
		Scan(&team.ID, &team.Name, &team.Engine)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// List retrieves all teams
func (r *PostgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `SELECT id, name, engine FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.Engine); err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// PostgresDriverRepository implements DriverRepository for PostgreSQL
type PostgresDriverRepository struct {
	db *database.DB
}

// NewPostgresDriverRepository creates a new driver repository
func NewPostgresDriverRepository(db *database.DB) DriverRepository {
	return &PostgresDriverRepository{db: db}
}

// Upsert inserts or updates a driver
func (r *PostgresDriverRepository) Upsert(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (id, name, number, team_id) VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, number = EXCLUDED.number, team_id = EXCLUDED.team_id
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query, driver.ID, driver.Name, driver.Number, driver.TeamID)
	if err != nil {
		return upsertError("drivers", driver.ID, err)
	}
	return nil
}

// GetByID retrieves a driver by ID
func (r *PostgresDriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT id, name, number, COALESCE(team_id, '') FROM drivers WHERE id = $1`

	driver := &models.Driver{}
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).
		Scan(&driver.ID, &driver.Name, &driver.Number, &driver.TeamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return driver, nil
}

// List retrieves the full roster
func (r *PostgresDriverRepository) List(ctx context.Context) ([]*models.Driver, error) {
	query := `SELECT id, name, number, COALESCE(team_id, '') FROM drivers ORDER BY name ASC`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		driver := &models.Driver{}
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Number, &driver.TeamID); err != nil {
			return nil, fmt.Errorf(errScanDrive, err)
		}
		drivers = append(drivers, driver)
	}

	return drivers, rows.Err()
}

// PostgresRosterRepository implements RosterRepository for PostgreSQL
type PostgresRosterRepository struct {
	db *database.DB
}

// NewPostgresRosterRepository creates a new roster assignment repository
func NewPostgresRosterRepository(db *database.DB) RosterRepository {
	return &PostgresRosterRepository{db: db}
}

// Create records a team reassignment
func (r *PostgresRosterRepository) Create(ctx context.Context, a *models.RosterAssignment) error {
	query := `
		INSERT INTO roster_assignments (id, driver_id, team_id, effective_from, note)
		VALUES ($1, $2, $3, $4, $5)
	`

	ensureID(&a.ID)
	_, err := r.db.Querier(ctx).Exec(ctx, query, a.ID, a.DriverID, a.TeamID, a.EffectiveFrom, a.Note)
	if err != nil {
		return fmt.Errorf("failed to create roster assignment: %w", err)
	}
	return nil
}

// List retrieves all assignments ordered by effective date
func (r *PostgresRosterRepository) List(ctx context.Context) ([]*models.RosterAssignment, error) {
	query := `
		SELECT id, driver_id, team_id, effective_from, note, created_at
		FROM roster_assignments
		ORDER BY effective_from ASC, created_at ASC
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.RosterAssignment
	for rows.Next() {
		a := &models.RosterAssignment{}
		if err := rows.Scan(&a.ID, &a.DriverID, &a.TeamID, &a.EffectiveFrom, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
