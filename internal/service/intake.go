package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
	"github.com/yourusername/pitwall-picks/internal/scoring"
)

// InputValidator checks predictions and results before they are stored
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a validator with the laptime rule registered
func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterValidation("laptime", func(fl validator.FieldLevel) bool {
		return scoring.ValidLapTime(fl.Field().String())
	})
	return &InputValidator{validate: v}
}

// Struct validates s and reports the first problem as a *models.ValidationError
func (iv *InputValidator) Struct(s interface{}) error {
	err := iv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fe := fieldErrors[0]
	field := fe.Field()
	switch fe.Tag() {
	case "unique":
		return models.NewValidationError("duplicate_driver", fmt.Sprintf("%s lists a driver more than once", field))
	case "max":
		return models.NewValidationError("too_many_entries", fmt.Sprintf("%s has more than %s entries", field, fe.Param()))
	case "laptime":
		return models.NewValidationError("invalid_pole_time", fmt.Sprintf("%s must look like M:SS.mmm", field))
	case "required":
		return models.NewValidationError("missing_field", fmt.Sprintf("%s is required", fe.Namespace()))
	default:
		return models.NewValidationError("invalid_field", fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
	}
}

// PredictionService accepts participant predictions
type PredictionService struct {
	races       repository.RaceRepository
	predictions repository.PredictionRepository
	tx          repository.Transactor
	validator   *InputValidator
	audit       *logger.AuditLogger
	now         func() time.Time
}

// NewPredictionService creates a new prediction service
func NewPredictionService(repos *repository.Repositories, audit *logger.AuditLogger) *PredictionService {
	return &PredictionService{
		races:       repos.Race,
		predictions: repos.Prediction,
		tx:          repos.Tx,
		validator:   NewInputValidator(),
		audit:       audit,
		now:         time.Now,
	}
}

// Submit creates or replaces the user's prediction for a race. Submissions
// are refused once qualifying has started.
func (s *PredictionService) Submit(ctx context.Context, p *models.Prediction) (*models.Prediction, error) {
	if err := s.validator.Struct(p); err != nil {
		s.reject(p, err)
		return nil, err
	}

	race, err := s.races.GetByID(ctx, p.RaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load race %s: %w", p.RaceID, err)
	}
	if !race.PredictionsOpen(s.now()) {
		s.reject(p, models.ErrDeadlinePassed)
		return nil, models.ErrDeadlinePassed
	}

	replaced := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.predictions.GetByUserAndRace(ctx, p.UserID, p.RaceID)
		switch {
		case err == nil:
			replaced = true
			p.ID = existing.ID
		case errors.Is(err, models.ErrNotFound):
		default:
			return fmt.Errorf("failed to look up prediction: %w", err)
		}
		return s.predictions.Upsert(ctx, p)
	})
	if err != nil {
		metrics.RecordPredictionSubmission(metrics.OutcomeFailure)
		return nil, err
	}

	metrics.RecordPredictionSubmission(metrics.OutcomeSuccess)
	s.audit.LogPredictionSubmitted(p.RaceID, p.UserID, p.ID, replaced)
	return p, nil
}

func (s *PredictionService) reject(p *models.Prediction, reason error) {
	metrics.RecordPredictionSubmission(metrics.OutcomeSkipped)
	s.audit.LogPredictionRejected(p.RaceID, p.UserID, reason.Error())
}

// SaveReport is returned by ResultService.Save
type SaveReport struct {
	Result      *models.RaceResult `json:"result"`
	Points      *AllPointsReport   `json:"points"`
	Predictions *ScoringReport     `json:"predictions,omitempty"`
}

// ResultService records official results and triggers the recalculation
type ResultService struct {
	races       repository.RaceRepository
	results     repository.RaceResultRepository
	points      *PointsService
	scorer      *PredictionScorer
	scoreOnSave bool
	validator   *InputValidator
	audit       *logger.AuditLogger
}

// NewResultService creates a new result service. When scoreOnSave is set a
// save also rescores the race's predictions.
func NewResultService(
	repos *repository.Repositories,
	points *PointsService,
	scorer *PredictionScorer,
	scoreOnSave bool,
	audit *logger.AuditLogger,
) *ResultService {
	return &ResultService{
		races:       repos.Race,
		results:     repos.RaceResult,
		points:      points,
		scorer:      scorer,
		scoreOnSave: scoreOnSave,
		validator:   NewInputValidator(),
		audit:       audit,
	}
}

// Save validates and stores a race result, then recalculates championship
// points. The result stays saved when a calculation step fails.
func (s *ResultService) Save(ctx context.Context, result *models.RaceResult) (*SaveReport, error) {
	if err := s.validator.Struct(result); err != nil {
		return nil, err
	}
	if _, err := s.races.GetByID(ctx, result.RaceID); err != nil {
		return nil, fmt.Errorf("failed to load race %s: %w", result.RaceID, err)
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, err
	}
	s.audit.LogResultSaved(result.RaceID, len(result.RaceResults), len(result.DNFDrivers), result.UpdatedAt)

	report := &SaveReport{Result: result}
	points, err := s.points.CalculateAllPoints(ctx, result.RaceID)
	report.Points = points
	if err != nil {
		return report, err
	}

	if s.scoreOnSave && s.scorer != nil {
		scored, err := s.scorer.ScoreRace(ctx, result.RaceID)
		if err != nil {
			return report, &StepError{Step: StepPredictions, RaceID: result.RaceID, Err: err}
		}
		report.Predictions = scored
	}

	return report, nil
}
