package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/service"
)

const (
	statusOK           = "ok"
	statusNotAvailable = "not_available"
	statusError        = "error"

	msgCalculationFailed = "points calculation failed, try again"
)

type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Step   string `json:"step,omitempty"`
}

// ScoreRequest is the body of POST /api/predictions/score
type ScoreRequest struct {
	RaceID string `json:"raceId"`
}

func (s *Server) handleCalculatePoints(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "raceID")

	report, err := s.svc.Points.CalculateAllPoints(r.Context(), raceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeReport(w, report, report.Skipped())
}

func (s *Server) handleScorePredictions(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RaceID == "" {
		s.writeError(w, models.NewValidationError("invalid_request", "body must be {\"raceId\": \"...\"}"))
		return
	}

	report, err := s.svc.Scorer.ScoreRace(r.Context(), req.RaceID)
	if err != nil {
		s.writeError(w, &service.StepError{Step: service.StepPredictions, RaceID: req.RaceID, Err: err})
		return
	}
	writeReport(w, report, report.Skipped)
}

func (s *Server) handleSaveResult(w http.ResponseWriter, r *http.Request) {
	var result models.RaceResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		s.writeError(w, models.NewValidationError("invalid_request", "malformed race result"))
		return
	}
	result.RaceID = chi.URLParam(r, "raceID")

	report, err := s.svc.Results.Save(r.Context(), &result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeReport(w, report, report.Points.Skipped())
}

func (s *Server) handleSubmitPrediction(w http.ResponseWriter, r *http.Request) {
	var p models.Prediction
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, models.NewValidationError("invalid_request", "malformed prediction"))
		return
	}
	p.RaceID = chi.URLParam(r, "raceID")

	saved, err := s.svc.Predictions.Submit(r.Context(), &p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusOK, Data: saved})
}

func (s *Server) handleDriverStandings(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Standings.DriverStandings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusOK, Data: table})
}

func (s *Server) handleConstructorStandings(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Standings.ConstructorStandings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusOK, Data: table})
}

func (s *Server) handlePredictionStandings(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Standings.PredictionStandings(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusOK, Data: table})
}

func writeReport(w http.ResponseWriter, report interface{}, skipped bool) {
	status := statusOK
	if skipped {
		status = statusNotAvailable
	}
	writeJSON(w, http.StatusOK, envelope{Status: status, Data: report})
}

// writeError maps domain errors onto status codes. Calculation failures get
// a generic retry message; the detail goes to the log.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		stepErr       *service.StepError
		upsertErr     *models.UpsertError
	)

	switch {
	case errors.Is(err, models.ErrDeadlinePassed):
		writeJSON(w, http.StatusConflict, errorResponse{Status: statusError, Error: err.Error(), Code: models.ErrDeadlinePassed.Code})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Status: statusError, Error: validationErr.Message, Code: validationErr.Code})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Status: statusError, Error: err.Error(), Code: "not_found"})
	case errors.As(err, &stepErr):
		s.logger.WithError(err).WithField("step", stepErr.Step).Error("Points calculation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: statusError, Error: msgCalculationFailed, Step: stepErr.Step})
	case errors.As(err, &upsertErr):
		s.logger.WithError(err).WithField("table", upsertErr.Table).Error("Write failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: statusError, Error: msgCalculationFailed})
	default:
		s.logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: statusError, Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
