package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitwall-picks/internal/models"
)

func constructorTotals(t *testing.T, f *fixture, raceID string) map[string]int {
	t.Helper()
	rows, err := f.repos.ConstructorPoints.ListByRace(f.ctx, raceID)
	require.NoError(t, err)
	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.TeamID] = row.Points
	}
	return totals
}

func TestComputeConstructorPoints(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	svc := f.pointsService(nil)

	_, err := svc.Drivers().ComputeDriverPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	report, err := svc.Constructors().ComputeConstructorPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.False(t, report.Skipped)

	totals := constructorTotals(t, f, raceBahrain)
	assert.Equal(t, 40, totals["rbr"], "1st and 3rd without fastest lap")
	assert.Equal(t, 27, totals["mcl"], "2nd, 6th and the fastest lap bonus")
	assert.Equal(t, 22, totals["fer"])
	assert.Equal(t, 10, totals["mer"])
	assert.Equal(t, 3, totals["amr"])
	assert.Equal(t, 0, totals["haa"])
	assert.NotContains(t, totals, "sau", "no classified driver")
	assert.Equal(t, 9, report.RowsWritten)
}

func TestConstructorFastestLapOutsideTopTen(t *testing.T) {
	f := newFixture(t)
	result := f.bahrainResult()
	result.FastestLap = "gas"
	f.saveResult(t, result)
	svc := f.pointsService(nil)

	_, err := svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)

	totals := constructorTotals(t, f, raceBahrain)
	assert.Equal(t, 0, totals["alp"])
	assert.Equal(t, 26, totals["mcl"])
}

func TestConstructorBonusComesFromResultNotDriverRows(t *testing.T) {
	f := newFixture(t)
	f.saveResult(t, f.bahrainResult())
	svc := f.pointsService(nil)

	_, err := svc.Drivers().ComputeDriverPoints(f.ctx, raceBahrain)
	require.NoError(t, err)

	// a stale driver row carrying a bonus must not leak into the team total
	require.NoError(t, f.repos.DriverPoints.Upsert(f.ctx, &models.DriverRacePoints{
		DriverID: "ver", RaceID: raceBahrain, Position: 1, Points: 26,
	}))

	_, err = svc.Constructors().ComputeConstructorPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.Equal(t, 40, constructorTotals(t, f, raceBahrain)["rbr"])
}

func TestConstructorSkipsUnassignedDriver(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Driver.Upsert(f.ctx, &models.Driver{ID: "bea", Name: "Reserve"}))
	result := f.bahrainResult()
	result.RaceResults = append([]string{"bea"}, result.RaceResults[:17]...)
	f.saveResult(t, result)

	report, err := f.pointsService(nil).CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	assert.Equal(t, 18, report.Drivers.RowsWritten)

	totals := constructorTotals(t, f, raceBahrain)
	assert.NotContains(t, totals, "")
	assert.Equal(t, 18+12, totals["rbr"], "ver 2nd and per 4th")
}

func TestConstructorUsesRosterAssignmentAtRaceDate(t *testing.T) {
	f := newFixture(t)
	roster := f.roster()

	// sai moves to haa between the two races
	require.NoError(t, roster.Assign(f.ctx, &models.RosterAssignment{
		DriverID:      "sai",
		TeamID:        "haa",
		EffectiveFrom: bahrainDate.Add(48 * time.Hour),
	}))

	loaded, err := roster.Load(f.ctx)
	require.NoError(t, err)

	team, ok := loaded.TeamFor("sai", bahrainDate)
	assert.True(t, ok)
	assert.Equal(t, "fer", team)

	team, ok = loaded.TeamFor("sai", saudiDate)
	assert.True(t, ok)
	assert.Equal(t, "haa", team)

	saudi := f.bahrainResult()
	saudi.RaceID = raceSaudi
	f.saveResult(t, f.bahrainResult())
	f.saveResult(t, saudi)

	svc := f.pointsService(nil)
	_, err = svc.CalculateAllPoints(f.ctx, raceBahrain)
	require.NoError(t, err)
	_, err = svc.CalculateAllPoints(f.ctx, raceSaudi)
	require.NoError(t, err)

	bahrain := constructorTotals(t, f, raceBahrain)
	assert.Equal(t, 22, bahrain["fer"])
	assert.Equal(t, 0, bahrain["haa"])

	jeddah := constructorTotals(t, f, raceSaudi)
	assert.Equal(t, 12, jeddah["fer"])
	assert.Equal(t, 10, jeddah["haa"])
}

func TestRosterAssignRejectsUnknownTeam(t *testing.T) {
	f := newFixture(t)
	err := f.roster().Assign(f.ctx, &models.RosterAssignment{
		DriverID: "sai", TeamID: "nope", EffectiveFrom: saudiDate,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	var verr *models.ValidationError
	err = f.roster().Assign(f.ctx, &models.RosterAssignment{DriverID: "sai"})
	assert.ErrorAs(t, err, &verr)
}
