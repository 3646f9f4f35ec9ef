package service

import (
	"context"
	"errors"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
)

// PointsService is the single entry point for championship points
type PointsService struct {
	results     repository.RaceResultRepository
	drivers     *DriverPointsCalculator
	constructor *ConstructorPointsCalculator
	cache       CacheInvalidator
	log         *logger.ScoringLogger
}

// NewPointsService wires both championship calculators over repos
func NewPointsService(repos *repository.Repositories, roster *RosterResolver, cache CacheInvalidator, log *logger.ScoringLogger) *PointsService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &PointsService{
		results:     repos.RaceResult,
		drivers:     NewDriverPointsCalculator(repos.RaceResult, repos.DriverPoints, log),
		constructor: NewConstructorPointsCalculator(repos.Race, repos.RaceResult, repos.DriverPoints, repos.ConstructorPoints, roster, log),
		cache:       cache,
		log:         log,
	}
}

// CalculateAllPoints recomputes driver points and then constructor points for
// a race from one read of its result. A failure names the step that failed;
// rows written by earlier steps are kept and a rerun repairs the rest.
func (s *PointsService) CalculateAllPoints(ctx context.Context, raceID string) (*AllPointsReport, error) {
	report := &AllPointsReport{RaceID: raceID}

	result, err := loadResult(ctx, s.results, raceID)
	if errors.Is(err, models.ErrMissingData) {
		s.log.LogSkipped(StepDriverPoints, raceID, err.Error())
		metrics.RecordCalculation(StepDriverPoints, metrics.OutcomeSkipped, 0)
		metrics.RecordCalculation(StepConstructorPoints, metrics.OutcomeSkipped, 0)
		report.Drivers = skippedReport(StepDriverPoints, raceID, err)
		report.Constructor = skippedReport(StepConstructorPoints, raceID, err)
		return report, nil
	}
	if err != nil {
		return nil, &StepError{Step: StepDriverPoints, RaceID: raceID, Err: err}
	}

	report.Drivers, err = s.drivers.computeFrom(ctx, result)
	if err != nil {
		return report, &StepError{Step: StepDriverPoints, RaceID: raceID, Err: err}
	}
	s.cache.Invalidate()

	report.Constructor, err = s.constructor.computeFrom(ctx, result)
	if err != nil {
		return report, &StepError{Step: StepConstructorPoints, RaceID: raceID, Err: err}
	}
	s.cache.Invalidate()

	return report, nil
}

// Drivers exposes the driver calculator for single-step reruns
func (s *PointsService) Drivers() *DriverPointsCalculator {
	return s.drivers
}

// Constructors exposes the constructor calculator for single-step reruns
func (s *PointsService) Constructors() *ConstructorPointsCalculator {
	return s.constructor
}
