package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
	"github.com/yourusername/pitwall-picks/internal/scoring"
)

// ConstructorPointsCalculator sums driver results per team
type ConstructorPointsCalculator struct {
	races        repository.RaceRepository
	results      repository.RaceResultRepository
	driverPoints repository.DriverPointsRepository
	teamPoints   repository.ConstructorPointsRepository
	roster       *RosterResolver
	log          *logger.ScoringLogger
}

// NewConstructorPointsCalculator creates a new constructor points calculator
func NewConstructorPointsCalculator(
	races repository.RaceRepository,
	results repository.RaceResultRepository,
	driverPoints repository.DriverPointsRepository,
	teamPoints repository.ConstructorPointsRepository,
	roster *RosterResolver,
	log *logger.ScoringLogger,
) *ConstructorPointsCalculator {
	return &ConstructorPointsCalculator{
		races:        races,
		results:      results,
		driverPoints: driverPoints,
		teamPoints:   teamPoints,
		roster:       roster,
		log:          log,
	}
}

// ComputeConstructorPoints upserts one row per team with a classified driver
// and removes rows of teams that no longer score. Driver points for the race
// must already be written.
func (c *ConstructorPointsCalculator) ComputeConstructorPoints(ctx context.Context, raceID string) (*CalculationReport, error) {
	result, err := loadResult(ctx, c.results, raceID)
	if errors.Is(err, models.ErrMissingData) {
		c.log.LogSkipped(StepConstructorPoints, raceID, err.Error())
		metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeSkipped, 0)
		return skippedReport(StepConstructorPoints, raceID, err), nil
	}
	if err != nil {
		return nil, err
	}
	return c.computeFrom(ctx, result)
}

// computeFrom takes positions and the fastest lap bonus from result rather
// than from the stored driver rows, so rows left over from an earlier
// classification never count.
func (c *ConstructorPointsCalculator) computeFrom(ctx context.Context, result *models.RaceResult) (*CalculationReport, error) {
	start := time.Now()
	raceID := result.RaceID

	race, err := c.races.GetByID(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load race %s: %w", raceID, err)
	}

	rows, err := c.driverPoints.ListByRace(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver points: %w", err)
	}
	if len(rows) == 0 {
		reason := fmt.Errorf("no driver points for race %s: %w", raceID, models.ErrMissingData)
		c.log.LogSkipped(StepConstructorPoints, raceID, reason.Error())
		metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeSkipped, 0)
		return skippedReport(StepConstructorPoints, raceID, reason), nil
	}

	roster, err := c.roster.Load(ctx)
	if err != nil {
		return nil, err
	}

	classified := scoring.Classification(result.RaceResults)
	totals := make(map[string]int)
	for _, row := range rows {
		position, ok := classified[row.DriverID]
		if !ok {
			continue
		}
		teamID, ok := roster.TeamFor(row.DriverID, race.Date)
		if !ok {
			c.log.LogUnassignedDriver(raceID, row.DriverID)
			continue
		}
		totals[teamID] += scoring.ChampionshipPoints(position)
	}

	if result.FastestLap != "" {
		position := classified[result.FastestLap]
		if bonus := scoring.FastestLapBonus(position, true); bonus > 0 {
			if teamID, ok := roster.TeamFor(result.FastestLap, race.Date); ok {
				totals[teamID] += bonus
			}
		}
	}

	teamIDs := make([]string, 0, len(totals))
	for teamID := range totals {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Strings(teamIDs)

	report := &CalculationReport{Step: StepConstructorPoints, RaceID: raceID}
	for _, teamID := range teamIDs {
		row := &models.ConstructorRacePoints{TeamID: teamID, RaceID: raceID, Points: totals[teamID]}
		if err := c.teamPoints.Upsert(ctx, row); err != nil {
			metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeFailure, time.Since(start).Seconds())
			return nil, err
		}
		report.RowsWritten++
	}

	removed, err := c.teamPoints.DeleteByRaceExcept(ctx, raceID, teamIDs)
	if err != nil {
		metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeFailure, time.Since(start).Seconds())
		return nil, err
	}
	report.RowsRemoved = removed

	report.Duration = time.Since(start)
	metrics.RecordRowsWritten("constructor_race_points", report.RowsWritten)
	metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeSuccess, report.Duration.Seconds())
	c.log.LogCalculation(StepConstructorPoints, raceID, report.RowsWritten, report.Duration)
	return report, nil
}
