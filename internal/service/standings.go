package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/repository"
)

// Prediction game categories
const (
	CategoryTotal      = "total"
	CategoryQualifying = "qualifying"
	CategoryRace       = "race"
	CategoryPoleTime   = "pole_time"
	CategoryFastestLap = "fastest_lap"
	CategoryDNF        = "dnf"
)

// Categories lists every prediction standings category
var Categories = []string{
	CategoryTotal, CategoryQualifying, CategoryRace, CategoryPoleTime, CategoryFastestLap, CategoryDNF,
}

var categoryPoints = map[string]func(*models.RacePoints) int{
	CategoryTotal:      func(r *models.RacePoints) int { return r.TotalPoints },
	CategoryQualifying: func(r *models.RacePoints) int { return r.QualifyingPoints },
	CategoryRace:       func(r *models.RacePoints) int { return r.RacePoints },
	CategoryPoleTime:   func(r *models.RacePoints) int { return r.PoleTimePoints },
	CategoryFastestLap: func(r *models.RacePoints) int { return r.FastestLapPoints },
	CategoryDNF:        func(r *models.RacePoints) int { return r.DNFPoints },
}

// RaceColumn is one race in a standings table
type RaceColumn struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// StandingsRow is one entity's season line
type StandingsRow struct {
	Position    int             `json:"position"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Points      map[string]int  `json:"points"`
	Total       int             `json:"total"`
	RacesScored int             `json:"races_scored"`
	Average     decimal.Decimal `json:"average"`
}

// StandingsTable is a season table with races as columns
type StandingsTable struct {
	Kind     string         `json:"kind"`
	Category string         `json:"category,omitempty"`
	Races    []RaceColumn   `json:"races"`
	Rows     []StandingsRow `json:"rows"`
}

// StandingsService builds season tables from the points rows
type StandingsService struct {
	repos *repository.Repositories
	cache *cache.Cache
}

// NewStandingsService creates a standings service caching tables for ttl.
// A zero ttl disables caching.
func NewStandingsService(repos *repository.Repositories, ttl time.Duration) *StandingsService {
	s := &StandingsService{repos: repos}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Invalidate drops every cached table
func (s *StandingsService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

// DriverStandings returns the drivers' championship table
func (s *StandingsService) DriverStandings(ctx context.Context) (*StandingsTable, error) {
	return s.cached("drivers", func() (*StandingsTable, error) {
		rows, err := s.repos.DriverPoints.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load driver points: %w", err)
		}
		drivers, err := s.repos.Driver.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load drivers: %w", err)
		}
		names := make(map[string]string, len(drivers))
		for _, d := range drivers {
			names[d.ID] = d.Name
		}

		entries := make([]entry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, entry{id: r.DriverID, raceID: r.RaceID, points: r.Points})
		}
		return s.build(ctx, "drivers", "", entries, names, false)
	})
}

// ConstructorStandings returns the constructors' championship table
func (s *StandingsService) ConstructorStandings(ctx context.Context) (*StandingsTable, error) {
	return s.cached("constructors", func() (*StandingsTable, error) {
		rows, err := s.repos.ConstructorPoints.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load constructor points: %w", err)
		}
		teams, err := s.repos.Team.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load teams: %w", err)
		}
		names := make(map[string]string, len(teams))
		for _, t := range teams {
			names[t.ID] = t.Name
		}

		entries := make([]entry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, entry{id: r.TeamID, raceID: r.RaceID, points: r.Points})
		}
		return s.build(ctx, "constructors", "", entries, names, false)
	})
}

// PredictionStandings returns the participants' table for one category.
// The pole_time table is ordered ascending.
func (s *StandingsService) PredictionStandings(ctx context.Context, category string) (*StandingsTable, error) {
	pick, ok := categoryPoints[category]
	if !ok {
		return nil, models.NewValidationError("unknown_category", fmt.Sprintf("unknown standings category %q", category))
	}

	return s.cached("predictions:"+category, func() (*StandingsTable, error) {
		rows, err := s.repos.RacePoints.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load race points: %w", err)
		}
		profiles, err := s.repos.Profile.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		names := make(map[string]string, len(profiles))
		for _, p := range profiles {
			names[p.UserID] = p.Username
		}

		entries := make([]entry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, entry{id: r.UserID, raceID: r.RaceID, points: pick(r)})
		}
		return s.build(ctx, "predictions", category, entries, names, category == CategoryPoleTime)
	})
}

func (s *StandingsService) cached(key string, load func() (*StandingsTable, error)) (*StandingsTable, error) {
	if s.cache != nil {
		if v, found := s.cache.Get(key); found {
			metrics.RecordStandingsCache(true)
			return v.(*StandingsTable), nil
		}
		metrics.RecordStandingsCache(false)
	}

	table, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, table)
	}
	return table, nil
}

type entry struct {
	id     string
	raceID string
	points int
}

func (s *StandingsService) build(ctx context.Context, kind, category string, entries []entry, names map[string]string, ascending bool) (*StandingsTable, error) {
	races, err := s.repos.Race.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load races: %w", err)
	}

	table := &StandingsTable{Kind: kind, Category: category, Races: make([]RaceColumn, 0, len(races))}
	for _, r := range races {
		table.Races = append(table.Races, RaceColumn{ID: r.ID, Name: r.Name, Date: r.Date})
	}
	table.Rows = Aggregate(entriesToRows(entries, names), ascending)
	return table, nil
}

func entriesToRows(entries []entry, names map[string]string) []StandingsRow {
	index := make(map[string]int)
	var rows []StandingsRow
	for _, e := range entries {
		i, ok := index[e.id]
		if !ok {
			name := names[e.id]
			if name == "" {
				name = e.id
			}
			rows = append(rows, StandingsRow{ID: e.id, Name: name, Points: make(map[string]int)})
			i = len(rows) - 1
			index[e.id] = i
		}
		rows[i].Points[e.raceID] += e.points
	}
	return rows
}

// Aggregate fills totals, averages and positions and sorts the rows. Totals
// sort descending unless ascending is set; ties fall back to name then id.
// Tied totals share a position.
func Aggregate(rows []StandingsRow, ascending bool) []StandingsRow {
	for i := range rows {
		total := 0
		for _, pts := range rows[i].Points {
			total += pts
		}
		rows[i].Total = total
		rows[i].RacesScored = len(rows[i].Points)
		rows[i].Average = decimal.Zero
		if rows[i].RacesScored > 0 {
			rows[i].Average = decimal.NewFromInt(int64(total)).
				DivRound(decimal.NewFromInt(int64(rows[i].RacesScored)), 2)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Total != b.Total {
			if ascending {
				return a.Total < b.Total
			}
			return a.Total > b.Total
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	for i := range rows {
		if i > 0 && rows[i].Total == rows[i-1].Total {
			rows[i].Position = rows[i-1].Position
		} else {
			rows[i].Position = i + 1
		}
	}
	return rows
}
