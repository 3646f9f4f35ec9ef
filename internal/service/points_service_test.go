package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitwall-picks/internal/models"
)

func TestCalculateAllPoints(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	cache := &countingInvalidator{}

	report, err := f.pointsService(cache).CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.False(t, report.Skipped())
	assert.Equal(t, 18, report.Drivers.RowsWritten)
	assert.Equal(t, 9, report.Constructor.RowsWritten)
	assert.Equal(t, 2, cache.calls)
}

func TestCalculateAllPointsMissingResult(t *testing.T) {
	f := newFixture(t)
	cache := &countingInvalidator{}

	report, err := f.pointsService(cache).CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.True(t, report.Skipped())
	assert.Contains(t, report.Drivers.Reason, models.ErrMissingData.Error())
	assert.Zero(t, cache.calls)
	assert.Zero(t, f.store.Counts()["driver_race_points"])
}

func TestCalculateAllPointsReportsFailedStep(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	svc := f.pointsService(nil)
	writeErr := errors.New("constraint violation")

	f.store.FailUpserts("constructor_race_points", writeErr)
	report, err := svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepConstructorPoints, stepErr.Step)
	assert.Equal(t, raceBahrain, stepErr.RaceID)

	var upsertErr *models.UpsertError
	require.ErrorAs(t, err, &upsertErr)
	assert.ErrorIs(t, err, writeErr)

	// driver rows from the successful step are kept
	require.NotNil(t, report.Drivers)
	assert.Equal(t, 18, f.store.Counts()["driver_race_points"])

	// rerunning after the fault clears completes the work
	f.store.FailUpserts("constructor_race_points", nil)
	_, err = svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.Equal(t, 9, f.store.Counts()["constructor_race_points"])
	assert.Equal(t, 18, f.store.Counts()["driver_race_points"])
}

func TestCalculateAllPointsDriverStepFailure(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	f.store.FailUpserts("driver_race_points", errors.New("disk full"))

	_, err := f.pointsService(nil).CalculateAllPoints(f.ctx, raceBahrain)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepDriverPoints, stepErr.Step)
	assert.Zero(t, f.store.Counts()["constructor_race_points"])
}

func TestCalculateAllPointsAfterCorrectedResult(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	standings := NewStandingsService(f.repos, time.Minute)
	svc := f.pointsService(standings)

	_, err := svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	_, err = standings.DriverStandings(f.ctx)
	require.NoError(t, err)

	// ver is disqualified, mag and hul are dropped, so haa has no classified driver
	corrected := f.bahrainResult()
	corrected.RaceResults = bahrainClassification[1:16]
	f.saveResult(t, corrected)

	report, err := svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Drivers.RowsRemoved)
	assert.Equal(t, 8, report.Constructor.RowsWritten)
	assert.Equal(t, 1, report.Constructor.RowsRemoved)

	totals := constructorTotals(t, f, raceBahrain)
	assert.Equal(t, 18, totals["rbr"], "per is now 2nd")
	assert.Equal(t, 36, totals["mcl"], "1st, 5th and the fastest lap bonus")
	assert.NotContains(t, totals, "haa")
	assert.Equal(t, 15, f.store.Counts()["driver_race_points"])

	table, err := standings.DriverStandings(f.ctx)
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)
	assert.Equal(t, "nor", table.Rows[0].ID)
	assert.Equal(t, 26, table.Rows[0].Total)
	for _, row := range table.Rows {
		if row.ID == "ver" {
			assert.Zero(t, row.Total)
		}
	}
}
