package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall-picks/internal/models"
)

func TestMemoryPredictionUpsertKeepsIdentity(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()

	first := &models.Prediction{UserID: "u1", RaceID: "r1", Top10: []string{"ver", "nor"}}
	require.NoError(t, repos.Prediction.Upsert(ctx, first))
	require.NotEmpty(t, first.ID)

	second := &models.Prediction{UserID: "u1", RaceID: "r1", Top10: []string{"lec"}}
	require.NoError(t, repos.Prediction.Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	stored, err := repos.Prediction.ListByRace(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, []string{"lec"}, stored[0].Top10)
}

func TestMemoryReturnedSlicesAreCopies(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()

	require.NoError(t, repos.RaceResult.Upsert(ctx, &models.RaceResult{RaceID: "r1", RaceResults: []string{"ver", "nor"}}))

	got, err := repos.RaceResult.GetByRaceID(ctx, "r1")
	require.NoError(t, err)
	got.RaceResults[0] = "changed"

	again, err := repos.RaceResult.GetByRaceID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "ver", again.RaceResults[0])
}

func TestMemoryNotFound(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()

	_, err := repos.Race.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repos.RaceResult.GetByRaceID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repos.Profile.GetByUserID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryDriverPointsUpsertIsIdempotent(t *testing.T) {
	repos, store := NewMemoryRepositories()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, repos.DriverPoints.Upsert(ctx, &models.DriverRacePoints{DriverID: "ver", RaceID: "r1", Position: 1, Points: 25}))
	}

	assert.Equal(t, 1, store.Counts()["driver_race_points"])
	rows, err := repos.DriverPoints.ListByRace(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 25, rows[0].Points)
}

func TestMemoryRecomputePointsSumsAllRaces(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()

	require.NoError(t, repos.Profile.Upsert(ctx, &models.Profile{UserID: "u1", Username: "alice"}))
	require.NoError(t, repos.RacePoints.Upsert(ctx, &models.RacePoints{RaceID: "r1", PredictionID: "p1", UserID: "u1", TotalPoints: 40}))
	require.NoError(t, repos.RacePoints.Upsert(ctx, &models.RacePoints{RaceID: "r2", PredictionID: "p2", UserID: "u1", TotalPoints: -3}))
	require.NoError(t, repos.RacePoints.Upsert(ctx, &models.RacePoints{RaceID: "r1", PredictionID: "p3", UserID: "u2", TotalPoints: 99}))

	total, err := repos.Profile.RecomputePoints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 37, total)

	// rescoring replaces rather than adds
	require.NoError(t, repos.RacePoints.Upsert(ctx, &models.RacePoints{RaceID: "r1", PredictionID: "p1", UserID: "u1", TotalPoints: 10}))
	total, err = repos.Profile.RecomputePoints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	profile, err := repos.Profile.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 7, profile.Points)
}

func TestMemoryFailUpserts(t *testing.T) {
	repos, store := NewMemoryRepositories()
	ctx := context.Background()
	boom := errors.New("connection reset")

	store.FailUpserts("constructor_race_points", boom)
	err := repos.ConstructorPoints.Upsert(ctx, &models.ConstructorRacePoints{TeamID: "rbr", RaceID: "r1", Points: 43})

	var upsertErr *models.UpsertError
	require.ErrorAs(t, err, &upsertErr)
	assert.Equal(t, "constructor_race_points", upsertErr.Table)
	assert.ErrorIs(t, err, boom)

	store.FailUpserts("constructor_race_points", nil)
	assert.NoError(t, repos.ConstructorPoints.Upsert(ctx, &models.ConstructorRacePoints{TeamID: "rbr", RaceID: "r1", Points: 43}))
}

func TestMemoryRacesListedByDate(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()
	base := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Race.Upsert(ctx, &models.Race{ID: "sau", Name: "Saudi Arabia", Date: base.AddDate(0, 0, 7)}))
	require.NoError(t, repos.Race.Upsert(ctx, &models.Race{ID: "bhr", Name: "Bahrain", Date: base}))

	races, err := repos.Race.List(ctx)
	require.NoError(t, err)
	require.Len(t, races, 2)
	assert.Equal(t, "bhr", races[0].ID)
	assert.Equal(t, "sau", races[1].ID)
}

func TestMemoryRacePointsAssignMissingIDs(t *testing.T) {
	repos, _ := NewMemoryRepositories()
	ctx := context.Background()

	a := &models.RacePoints{RaceID: "r1", PredictionID: "p1", UserID: "u1"}
	b := &models.RacePoints{RaceID: "r1", PredictionID: "p2", UserID: "u2"}
	require.NoError(t, repos.RacePoints.Upsert(ctx, a))
	require.NoError(t, repos.RacePoints.Upsert(ctx, b))
	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)

	again := &models.RacePoints{RaceID: "r1", PredictionID: "p1", UserID: "u1", TotalPoints: 3}
	require.NoError(t, repos.RacePoints.Upsert(ctx, again))
	assert.Equal(t, a.ID, again.ID)
}

func TestMemoryDeleteByRaceExcept(t *testing.T) {
	repos, store := NewMemoryRepositories()
	ctx := context.Background()

	for i, driverID := range []string{"ver", "nor", "per"} {
		require.NoError(t, repos.DriverPoints.Upsert(ctx, &models.DriverRacePoints{DriverID: driverID, RaceID: "r1", Position: i + 1}))
	}
	require.NoError(t, repos.DriverPoints.Upsert(ctx, &models.DriverRacePoints{DriverID: "ver", RaceID: "r2", Position: 1}))
	require.NoError(t, repos.ConstructorPoints.Upsert(ctx, &models.ConstructorRacePoints{TeamID: "rbr", RaceID: "r1"}))

	removed, err := repos.DriverPoints.DeleteByRaceExcept(ctx, "r1", []string{"nor"})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	rows, err := repos.DriverPoints.ListByRace(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "nor", rows[0].DriverID)

	other, err := repos.DriverPoints.ListByRace(ctx, "r2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "other races are untouched")

	removed, err = repos.ConstructorPoints.DeleteByRaceExcept(ctx, "r1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Zero(t, store.Counts()["constructor_race_points"])
}

func TestEnsureID(t *testing.T) {
	id := ""
	ensureID(&id)
	assert.NotEmpty(t, id)

	kept := "fixed"
	ensureID(&kept)
	assert.Equal(t, "fixed", kept)
}
