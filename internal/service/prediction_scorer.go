package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
	"github.com/yourusername/pitwall-picks/internal/scoring"
)

// PredictionScorer scores every prediction of a race and refreshes profile totals
type PredictionScorer struct {
	predictions repository.PredictionRepository
	results     repository.RaceResultRepository
	racePoints  repository.RacePointsRepository
	profiles    repository.ProfileRepository
	workers     int
	userLocks   *keyedMutex
	cache       CacheInvalidator
	log         *logger.ScoringLogger
}

// NewPredictionScorer creates a new prediction scorer. workers bounds the
// number of predictions scored concurrently.
func NewPredictionScorer(repos *repository.Repositories, workers int, cache CacheInvalidator, log *logger.ScoringLogger) *PredictionScorer {
	if workers < 1 {
		workers = 1
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &PredictionScorer{
		predictions: repos.Prediction,
		results:     repos.RaceResult,
		racePoints:  repos.RacePoints,
		profiles:    repos.Profile,
		workers:     workers,
		userLocks:   newKeyedMutex(),
		cache:       cache,
		log:         log,
	}
}

// ScoreRace writes a RacePoints row for every prediction of the race, then
// recomputes each affected user's season total from all of their rows.
func (s *PredictionScorer) ScoreRace(ctx context.Context, raceID string) (*ScoringReport, error) {
	start := time.Now()

	result, err := loadResult(ctx, s.results, raceID)
	if errors.Is(err, models.ErrMissingData) {
		s.log.LogSkipped(StepPredictions, raceID, err.Error())
		metrics.RecordCalculation(StepPredictions, metrics.OutcomeSkipped, 0)
		return &ScoringReport{RaceID: raceID, Skipped: true, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	predictions, err := s.predictions.ListByRace(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}

	report := &ScoringReport{RaceID: raceID}
	if err := s.scoreAll(ctx, predictions, result); err != nil {
		metrics.RecordCalculation(StepPredictions, metrics.OutcomeFailure, time.Since(start).Seconds())
		return nil, err
	}
	report.PredictionsScored = len(predictions)
	metrics.RecordPredictionsScored(len(predictions))
	metrics.RecordRowsWritten("race_points", len(predictions))

	users := affectedUsers(predictions)
	if err := s.recomputeProfiles(ctx, users); err != nil {
		metrics.RecordCalculation(StepPredictions, metrics.OutcomeFailure, time.Since(start).Seconds())
		return nil, err
	}
	report.UsersUpdated = len(users)
	s.cache.Invalidate()

	report.Duration = time.Since(start)
	metrics.UpdateScoredParticipants(len(users))
	metrics.RecordCalculation(StepPredictions, metrics.OutcomeSuccess, report.Duration.Seconds())
	s.log.LogCalculation(StepPredictions, raceID, report.PredictionsScored, report.Duration)
	return report, nil
}

func (s *PredictionScorer) scoreAll(ctx context.Context, predictions []*models.Prediction, result *models.RaceResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, p := range predictions {
		p := p
		g.Go(func() error {
			breakdown := scoring.Score(p, result)
			row := &models.RacePoints{RaceID: result.RaceID, PredictionID: p.ID, UserID: p.UserID}
			breakdown.Apply(row)

			if err := s.racePoints.Upsert(gctx, row); err != nil {
				return fmt.Errorf("failed to store points for prediction %s: %w", p.ID, err)
			}
			s.log.LogPredictionScored(result.RaceID, p.ID, p.UserID, row.TotalPoints)
			return nil
		})
	}

	return g.Wait()
}

func (s *PredictionScorer) recomputeProfiles(ctx context.Context, users []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			_, err := s.RecomputeProfile(gctx, userID)
			return err
		})
	}

	return g.Wait()
}

// RecomputeProfile rewrites one user's cached total. Calls for the same user
// never overlap.
func (s *PredictionScorer) RecomputeProfile(ctx context.Context, userID string) (int, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	points, err := s.profiles.RecomputePoints(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute profile %s: %w", userID, err)
	}
	s.log.LogProfileRecomputed(userID, points)
	return points, nil
}

func affectedUsers(predictions []*models.Prediction) []string {
	seen := make(map[string]struct{}, len(predictions))
	users := make([]string, 0, len(predictions))
	for _, p := range predictions {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		users = append(users, p.UserID)
	}
	sort.Strings(users)
	return users
}
