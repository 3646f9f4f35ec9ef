package service

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
	"github.com/yourusername/pitwall-picks/internal/scoring"
)

// DriverPointsCalculator awards championship points per classified driver
type DriverPointsCalculator struct {
	results repository.RaceResultRepository
	points  repository.DriverPointsRepository
	log     *logger.ScoringLogger
}

// NewDriverPointsCalculator creates a new driver points calculator
func NewDriverPointsCalculator(
	results repository.RaceResultRepository,
	points repository.DriverPointsRepository,
	log *logger.ScoringLogger,
) *DriverPointsCalculator {
	return &DriverPointsCalculator{results: results, points: points, log: log}
}

// ComputeDriverPoints upserts one row per driver listed in the race
// classification and removes rows of drivers no longer listed. A race
// without a result is skipped, not failed.
func (c *DriverPointsCalculator) ComputeDriverPoints(ctx context.Context, raceID string) (*CalculationReport, error) {
	result, err := loadResult(ctx, c.results, raceID)
	if errors.Is(err, models.ErrMissingData) {
		c.log.LogSkipped(StepDriverPoints, raceID, err.Error())
		metrics.RecordCalculation(StepDriverPoints, metrics.OutcomeSkipped, 0)
		return skippedReport(StepDriverPoints, raceID, err), nil
	}
	if err != nil {
		return nil, err
	}
	return c.computeFrom(ctx, result)
}

func (c *DriverPointsCalculator) computeFrom(ctx context.Context, result *models.RaceResult) (*CalculationReport, error) {
	start := time.Now()
	report := &CalculationReport{Step: StepDriverPoints, RaceID: result.RaceID}

	seen := make(map[string]struct{}, len(result.RaceResults))
	kept := make([]string, 0, len(result.RaceResults))
	for i, driverID := range result.RaceResults {
		if driverID == "" {
			continue
		}
		if _, dup := seen[driverID]; dup {
			continue
		}
		seen[driverID] = struct{}{}

		position := i + 1
		row := &models.DriverRacePoints{
			DriverID: driverID,
			RaceID:   result.RaceID,
			Position: position,
			Points:   scoring.DriverPoints(position, driverID == result.FastestLap),
		}
		if err := c.points.Upsert(ctx, row); err != nil {
			metrics.RecordCalculation(StepDriverPoints, metrics.OutcomeFailure, time.Since(start).Seconds())
			return nil, err
		}
		report.RowsWritten++
		kept = append(kept, driverID)
	}

	// Drivers dropped from a corrected classification lose their row.
	removed, err := c.points.DeleteByRaceExcept(ctx, result.RaceID, kept)
	if err != nil {
		metrics.RecordCalculation(StepDriverPoints, metrics.OutcomeFailure, time.Since(start).Seconds())
		return nil, err
	}
	report.RowsRemoved = removed

	report.Duration = time.Since(start)
	metrics.RecordRowsWritten("driver_race_points", report.RowsWritten)
	metrics.RecordCalculation(StepDriverPoints, metrics.OutcomeSuccess, report.Duration.Seconds())
	c.log.LogCalculation(StepDriverPoints, result.RaceID, report.RowsWritten, report.Duration)
	return report, nil
}
