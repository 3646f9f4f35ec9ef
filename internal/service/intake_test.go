package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitwall-picks/internal/models"
)

func TestInputValidator(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name     string
		mutate   func(p *models.Prediction)
		wantCode string
	}{
		{"valid", func(p *models.Prediction) {}, ""},
		{"empty lists allowed", func(p *models.Prediction) { p.Top10 = nil; p.DNFPredictions = nil }, ""},
		{"duplicate driver", func(p *models.Prediction) { p.Top10[1] = p.Top10[0] }, "duplicate_driver"},
		{"too many entries", func(p *models.Prediction) {
			p.QualifyingResults = append(append([]string(nil), bahrainQualifying...), "bea")
		}, "too_many_entries"},
		{"bad pole time", func(p *models.Prediction) { p.PoleTime = "89.179" }, "invalid_pole_time"},
		{"seconds out of range", func(p *models.Prediction) { p.PoleTime = "1:60.000" }, "invalid_pole_time"},
		{"blank entry", func(p *models.Prediction) { p.DNFPredictions = []string{""} }, "missing_field"},
		{"missing user", func(p *models.Prediction) { p.UserID = "" }, "missing_field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := (&fixture{}).perfectPrediction("alice")
			tt.mutate(p)

			err := v.Struct(p)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantCode, verr.Code)
		})
	}
}

func TestSubmitPrediction(t *testing.T) {
	f := newFixture(t)
	svc := NewPredictionService(f.repos, f.audit)
	svc.now = func() time.Time { return bahrainDate.Add(-48 * time.Hour) }

	first, err := svc.Submit(f.ctx, f.perfectPrediction("alice"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	resubmit := f.perfectPrediction("alice")
	resubmit.FastestLap = "ver"
	second, err := svc.Submit(f.ctx, resubmit)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := f.repos.Prediction.GetByUserAndRace(f.ctx, "alice", raceBahrain)
	require.NoError(t, err)
	assert.Equal(t, "ver", stored.FastestLap)

	all, err := f.repos.Prediction.ListByRace(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitPredictionAfterDeadline(t *testing.T) {
	f := newFixture(t)
	svc := NewPredictionService(f.repos, f.audit)
	// qualifying starts exactly at the deadline
	svc.now = func() time.Time { return bahrainDate.Add(-24 * time.Hour) }

	_, err := svc.Submit(f.ctx, f.perfectPrediction("alice"))
	assert.ErrorIs(t, err, models.ErrDeadlinePassed)

	_, err = f.repos.Prediction.GetByUserAndRace(f.ctx, "alice", raceBahrain)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubmitPredictionUnknownRace(t *testing.T) {
	f := newFixture(t)
	svc := NewPredictionService(f.repos, f.audit)

	p := f.perfectPrediction("alice")
	p.RaceID = "monaco-2024"
	_, err := svc.Submit(f.ctx, p)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSaveResult(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Prediction.Upsert(f.ctx, f.perfectPrediction("alice")))

	standings := NewStandingsService(f.repos, time.Minute)
	points := f.pointsService(standings)
	scorer := NewPredictionScorer(f.repos, 2, standings, f.log)

	tests := []struct {
		name        string
		scoreOnSave bool
		wantScored  bool
	}{
		{"championship points only", false, false},
		{"also scores predictions", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewResultService(f.repos, points, scorer, tt.scoreOnSave, f.audit)

			report, err := svc.Save(f.ctx, f.bahrainResult())
			require.NoError(t, err)
			assert.NotEmpty(t, report.Result.ID)
			assert.Equal(t, 18, report.Points.Drivers.RowsWritten)
			assert.Equal(t, tt.wantScored, report.Predictions != nil)
		})
	}

	profile, err := f.repos.Profile.GetByUserID(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 201, profile.Points)
}

func TestSaveResultRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	svc := NewResultService(f.repos, f.pointsService(nil), nil, false, f.audit)

	result := f.bahrainResult()
	result.RaceResults[3] = "ver"
	_, err := svc.Save(f.ctx, result)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duplicate_driver", verr.Code)

	_, err = f.repos.RaceResult.GetByRaceID(f.ctx, raceBahrain)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
