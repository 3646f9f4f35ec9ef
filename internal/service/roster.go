package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
)

// Roster is a point-in-time view of driver to team assignments
type Roster struct {
	defaults    map[string]string
	assignments map[string][]*models.RosterAssignment
}

// TeamFor returns the team a driver raced for at t. The newest assignment
// effective on or before t wins; otherwise the driver's own team applies.
func (r *Roster) TeamFor(driverID string, at time.Time) (string, bool) {
	history := r.assignments[driverID]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].AppliesAt(at) {
			return history[i].TeamID, true
		}
	}
	team, ok := r.defaults[driverID]
	return team, ok && team != ""
}

// RosterResolver builds rosters from the driver table and reassignments
type RosterResolver struct {
	teams   repository.TeamRepository
	drivers repository.DriverRepository
	roster  repository.RosterRepository
	audit   *logger.AuditLogger
}

// NewRosterResolver creates a new roster resolver
func NewRosterResolver(
	teams repository.TeamRepository,
	drivers repository.DriverRepository,
	roster repository.RosterRepository,
	audit *logger.AuditLogger,
) *RosterResolver {
	return &RosterResolver{teams: teams, drivers: drivers, roster: roster, audit: audit}
}

// Load reads the full roster once
func (rr *RosterResolver) Load(ctx context.Context) (*Roster, error) {
	drivers, err := rr.drivers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load drivers: %w", err)
	}
	assignments, err := rr.roster.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster assignments: %w", err)
	}

	r := &Roster{
		defaults:    make(map[string]string, len(drivers)),
		assignments: make(map[string][]*models.RosterAssignment),
	}
	for _, d := range drivers {
		r.defaults[d.ID] = d.TeamID
	}
	// List is ordered by effective_from, so each history stays sorted
	for _, a := range assignments {
		r.assignments[a.DriverID] = append(r.assignments[a.DriverID], a)
	}
	return r, nil
}

// Assign records that a driver races for a team from EffectiveFrom onwards
func (rr *RosterResolver) Assign(ctx context.Context, a *models.RosterAssignment) error {
	if a.DriverID == "" || a.TeamID == "" || a.EffectiveFrom.IsZero() {
		return models.NewValidationError("invalid_assignment", "driver, team and effective date are required")
	}
	if _, err := rr.drivers.GetByID(ctx, a.DriverID); err != nil {
		return fmt.Errorf("unknown driver %s: %w", a.DriverID, err)
	}
	if _, err := rr.teams.GetByID(ctx, a.TeamID); err != nil {
		return fmt.Errorf("unknown team %s: %w", a.TeamID, err)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := rr.roster.Create(ctx, a); err != nil {
		return err
	}

	rr.audit.LogRosterAssignment(a.DriverID, a.TeamID, a.EffectiveFrom)
	return nil
}
