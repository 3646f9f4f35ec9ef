// Package service runs the points calculators, the prediction scorer and the
// standings aggregator against the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
)

// Calculation steps
const (
	StepDriverPoints      = "driver_points"
	StepConstructorPoints = "constructor_points"
	StepPredictions       = "predictions"
)

// CalculationReport summarises one calculator run
type CalculationReport struct {
	Step        string        `json:"step"`
	RaceID      string        `json:"race_id"`
	Skipped     bool          `json:"skipped"`
	Reason      string        `json:"reason,omitempty"`
	RowsWritten int           `json:"rows_written"`
	RowsRemoved int           `json:"rows_removed"`
	Duration    time.Duration `json:"duration_ns"`
}

// ScoringReport summarises a prediction scoring run
type ScoringReport struct {
	RaceID            string        `json:"race_id"`
	Skipped           bool          `json:"skipped"`
	Reason            string        `json:"reason,omitempty"`
	PredictionsScored int           `json:"predictions_scored"`
	UsersUpdated      int           `json:"users_updated"`
	Duration          time.Duration `json:"duration_ns"`
}

// AllPointsReport is the combined result of CalculateAllPoints
type AllPointsReport struct {
	RaceID      string             `json:"race_id"`
	Drivers     *CalculationReport `json:"drivers"`
	Constructor *CalculationReport `json:"constructors"`
}

// Skipped reports whether no step had anything to score
func (r *AllPointsReport) Skipped() bool {
	return r.Drivers != nil && r.Drivers.Skipped && (r.Constructor == nil || r.Constructor.Skipped)
}

// StepError identifies the calculation step that failed
type StepError struct {
	Step   string
	RaceID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s calculation failed for race %s: %v", e.Step, e.RaceID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CacheInvalidator is notified whenever points rows are rewritten
type CacheInvalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

func skippedReport(step, raceID string, reason error) *CalculationReport {
	return &CalculationReport{Step: step, RaceID: raceID, Skipped: true, Reason: reason.Error()}
}

// loadResult returns models.ErrMissingData when there is nothing to score
func loadResult(ctx context.Context, results repository.RaceResultRepository, raceID string) (*models.RaceResult, error) {
	result, err := results.GetByRaceID(ctx, raceID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("no result recorded for race %s: %w", raceID, models.ErrMissingData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load race result: %w", err)
	}
	if !result.HasClassification() {
		return nil, fmt.Errorf("race %s has an empty classification: %w", raceID, models.ErrMissingData)
	}
	return result, nil
}
