package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
)

const (
	raceBahrain = "bahrain-2024"
	raceSaudi   = "saudi-2024"
)

var (
	bahrainDate = time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	saudiDate   = time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC)

	teamDrivers = map[string][2]string{
		"rbr": {"ver", "per"},
		"mer": {"ham", "rus"},
		"fer": {"lec", "sai"},
		"mcl": {"nor", "pia"},
		"amr": {"alo", "str"},
		"alp": {"gas", "oco"},
		"wil": {"alb", "sar"},
		"rb":  {"tsu", "ric"},
		"sau": {"bot", "zho"},
		"haa": {"mag", "hul"},
	}

	// bot and zho retire
	bahrainClassification = []string{
		"ver", "nor", "per", "lec", "sai", "pia", "ham", "rus", "alo", "str",
		"gas", "oco", "alb", "sar", "tsu", "ric", "mag", "hul",
	}
	bahrainQualifying = []string{
		"ver", "lec", "nor", "per", "sai", "pia", "ham", "rus", "alo", "str",
		"gas", "oco", "alb", "sar", "tsu", "ric", "bot", "zho", "mag", "hul",
	}
)

type fixture struct {
	ctx   context.Context
	repos *repository.Repositories
	store *repository.MemoryStore
	log   *logger.ScoringLogger
	audit *logger.AuditLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, store := repository.NewMemoryRepositories()
	ctx := context.Background()
	base := logger.Discard()

	for teamID, drivers := range teamDrivers {
		require.NoError(t, repos.Team.Upsert(ctx, &models.Team{ID: teamID, Name: "Team " + teamID}))
		for _, driverID := range drivers {
			require.NoError(t, repos.Driver.Upsert(ctx, &models.Driver{ID: driverID, Name: "Driver " + driverID, TeamID: teamID}))
		}
	}

	for _, race := range []*models.Race{
		{ID: raceBahrain, Name: "Bahrain Grand Prix", Date: bahrainDate, QualifyingDate: bahrainDate.Add(-24 * time.Hour), Valid: true},
		{ID: raceSaudi, Name: "Saudi Arabian Grand Prix", Date: saudiDate, QualifyingDate: saudiDate.Add(-24 * time.Hour), Valid: true},
	} {
		require.NoError(t, repos.Race.Upsert(ctx, race))
	}

	return &fixture{
		ctx:   ctx,
		repos: repos,
		store: store,
		log:   logger.NewScoringLogger(base),
		audit: logger.NewAuditLogger(base),
	}
}

func (f *fixture) bahrainResult() *models.RaceResult {
	return &models.RaceResult{
		RaceID:            raceBahrain,
		QualifyingResults: append([]string(nil), bahrainQualifying...),
		RaceResults:       append([]string(nil), bahrainClassification...),
		PoleTime:          "1:29.179",
		FastestLap:        "nor",
		DNFDrivers:        []string{"bot", "zho"},
	}
}

func (f *fixture) saveResult(t *testing.T, result *models.RaceResult) {
	t.Helper()
	require.NoError(t, f.repos.RaceResult.Upsert(f.ctx, result))
}

func (f *fixture) roster() *RosterResolver {
	return NewRosterResolver(f.repos.Team, f.repos.Driver, f.repos.Roster, f.audit)
}

func (f *fixture) pointsService(cache CacheInvalidator) *PointsService {
	return NewPointsService(f.repos, f.roster(), cache, f.log)
}

func (f *fixture) perfectPrediction(userID string) *models.Prediction {
	return &models.Prediction{
		UserID:            userID,
		RaceID:            raceBahrain,
		PolePosition:      "ver",
		PoleTime:          "1:29.179",
		QualifyingResults: append([]string(nil), bahrainQualifying[:10]...),
		Top10:             append([]string(nil), bahrainClassification[:10]...),
		FastestLap:        "nor",
		DNFPredictions:    []string{"sar", "mag"},
	}
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }
