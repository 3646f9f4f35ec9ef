package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/pitwall-picks/internal/models"
)

// MemoryStore is an in-process datastore backing the memory repositories.
// It is used by tests and by the CLI dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	failures map[string]error

	races        map[string]models.Race
	teams        map[string]models.Team
	drivers      map[string]models.Driver
	roster       []models.RosterAssignment
	results      map[string]models.RaceResult
	predictions  map[[2]string]models.Prediction
	driverPoints map[[2]string]models.DriverRacePoints
	teamPoints   map[[2]string]models.ConstructorRacePoints
	racePoints   map[[2]string]models.RacePoints
	profiles     map[string]models.Profile
}

// NewMemoryRepositories returns a repository set sharing one MemoryStore
func NewMemoryRepositories() (*Repositories, *MemoryStore) {
	s := &MemoryStore{
		now:          time.Now,
		failures:     make(map[string]error),
		races:        make(map[string]models.Race),
		teams:        make(map[string]models.Team),
		drivers:      make(map[string]models.Driver),
		results:      make(map[string]models.RaceResult),
		predictions:  make(map[[2]string]models.Prediction),
		driverPoints: make(map[[2]string]models.DriverRacePoints),
		teamPoints:   make(map[[2]string]models.ConstructorRacePoints),
		racePoints:   make(map[[2]string]models.RacePoints),
		profiles:     make(map[string]models.Profile),
	}

	return &Repositories{
		Race:              memRaces{s},
		Team:              memTeams{s},
		Driver:            memDrivers{s},
		Roster:            memRoster{s},
		RaceResult:        memResults{s},
		Prediction:        memPredictions{s},
		DriverPoints:      memDriverPoints{s},
		ConstructorPoints: memTeamPoints{s},
		RacePoints:        memRacePoints{s},
		Profile:           memProfiles{s},
		Tx:                s,
	}, s
}

// FailUpserts makes every later upsert into table fail with err.
// A nil err clears the failure.
func (s *MemoryStore) FailUpserts(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, table)
		return
	}
	s.failures[table] = err
}

// WithTransaction runs fn directly; the store has no rollback
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Counts returns the number of stored rows per points table
func (s *MemoryStore) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"driver_race_points":      len(s.driverPoints),
		"constructor_race_points": len(s.teamPoints),
		"race_points":             len(s.racePoints),
		"profiles":                len(s.profiles),
	}
}

// checkFailure must be called with the write lock held
func (s *MemoryStore) checkFailure(table, key string) error {
	if err, ok := s.failures[table]; ok {
		return upsertError(table, key, err)
	}
	return nil
}

func clone(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// deleteExcept removes entries keyed {id, raceID} whose id is not in keep.
// The caller holds the write lock.
func deleteExcept[V any](rows map[[2]string]V, raceID string, keep []string) int {
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	removed := 0
	for key := range rows {
		if key[1] != raceID {
			continue
		}
		if _, ok := kept[key[0]]; !ok {
			delete(rows, key)
			removed++
		}
	}
	return removed
}

type memRaces struct{ s *MemoryStore }

func (m memRaces) Upsert(_ context.Context, race *models.Race) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("races", race.ID); err != nil {
		return err
	}
	now := m.s.now()
	if prev, ok := m.s.races[race.ID]; ok {
		race.CreatedAt = prev.CreatedAt
	} else {
		race.CreatedAt = now
	}
	race.UpdatedAt = now
	m.s.races[race.ID] = *race
	return nil
}

func (m memRaces) GetByID(_ context.Context, id string) (*models.Race, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	race, ok := m.s.races[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &race, nil
}

func (m memRaces) List(_ context.Context) ([]*models.Race, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.Race, 0, len(m.s.races))
	for _, race := range m.s.races {
		race := race
		out = append(out, &race)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memTeams struct{ s *MemoryStore }

func (m memTeams) Upsert(_ context.Context, team *models.Team) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("teams", team.ID); err != nil {
		return err
	}
	m.s.teams[team.ID] = *team
	return nil
}

func (m memTeams) GetByID(_ context.Context, id string) (*models.Team, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	team, ok := m.s.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &team, nil
}

func (m memTeams) List(_ context.Context) ([]*models.Team, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.Team, 0, len(m.s.teams))
	for _, team := range m.s.teams {
		team := team
		out = append(out, &team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memDrivers struct{ s *MemoryStore }

func (m memDrivers) Upsert(_ context.Context, driver *models.Driver) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("drivers", driver.ID); err != nil {
		return err
	}
	m.s.drivers[driver.ID] = *driver
	return nil
}

func (m memDrivers) GetByID(_ context.Context, id string) (*models.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	driver, ok := m.s.drivers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &driver, nil
}

func (m memDrivers) List(_ context.Context) ([]*models.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.Driver, 0, len(m.s.drivers))
	for _, driver := range m.s.drivers {
		driver := driver
		out = append(out, &driver)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memRoster struct{ s *MemoryStore }

func (m memRoster) Create(_ context.Context, a *models.RosterAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ensureID(&a.ID)
	a.CreatedAt = m.s.now()
	m.s.roster = append(m.s.roster, *a)
	return nil
}

func (m memRoster) List(_ context.Context) ([]*models.RosterAssignment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.RosterAssignment, 0, len(m.s.roster))
	for _, a := range m.s.roster {
		a := a
		out = append(out, &a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveFrom.Before(out[j].EffectiveFrom) })
	return out, nil
}

type memResults struct{ s *MemoryStore }

func (m memResults) Upsert(_ context.Context, result *models.RaceResult) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("race_results", result.RaceID); err != nil {
		return err
	}
	now := m.s.now()
	if prev, ok := m.s.results[result.RaceID]; ok {
		result.ID = prev.ID
		result.CreatedAt = prev.CreatedAt
	} else {
		ensureID(&result.ID)
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	stored := *result
	stored.QualifyingResults = clone(result.QualifyingResults)
	stored.RaceResults = clone(result.RaceResults)
	stored.DNFDrivers = clone(result.DNFDrivers)
	m.s.results[result.RaceID] = stored
	return nil
}

func (m memResults) GetByRaceID(_ context.Context, raceID string) (*models.RaceResult, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	result, ok := m.s.results[raceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	result.QualifyingResults = clone(result.QualifyingResults)
	result.RaceResults = clone(result.RaceResults)
	result.DNFDrivers = clone(result.DNFDrivers)
	return &result, nil
}

type memPredictions struct{ s *MemoryStore }

func (m memPredictions) Upsert(_ context.Context, p *models.Prediction) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := [2]string{p.UserID, p.RaceID}
	if err := m.s.checkFailure("predictions", p.UserID+"/"+p.RaceID); err != nil {
		return err
	}
	now := m.s.now()
	if prev, ok := m.s.predictions[key]; ok {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
	} else {
		ensureID(&p.ID)
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	stored := *p
	stored.QualifyingResults = clone(p.QualifyingResults)
	stored.Top10 = clone(p.Top10)
	stored.DNFPredictions = clone(p.DNFPredictions)
	m.s.predictions[key] = stored
	return nil
}

func (m memPredictions) GetByUserAndRace(_ context.Context, userID, raceID string) (*models.Prediction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	p, ok := m.s.predictions[[2]string{userID, raceID}]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyPrediction(p), nil
}

func (m memPredictions) ListByRace(_ context.Context, raceID string) ([]*models.Prediction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*models.Prediction
	for _, p := range m.s.predictions {
		if p.RaceID != raceID {
			continue
		}
		out = append(out, copyPrediction(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func copyPrediction(p models.Prediction) *models.Prediction {
	p.QualifyingResults = clone(p.QualifyingResults)
	p.Top10 = clone(p.Top10)
	p.DNFPredictions = clone(p.DNFPredictions)
	return &p
}

type memDriverPoints struct{ s *MemoryStore }

func (m memDriverPoints) Upsert(_ context.Context, row *models.DriverRacePoints) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("driver_race_points", row.DriverID+"/"+row.RaceID); err != nil {
		return err
	}
	row.UpdatedAt = m.s.now()
	m.s.driverPoints[[2]string{row.DriverID, row.RaceID}] = *row
	return nil
}

func (m memDriverPoints) DeleteByRaceExcept(_ context.Context, raceID string, keep []string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err, ok := m.s.failures["driver_race_points"]; ok {
		return 0, err
	}
	return deleteExcept(m.s.driverPoints, raceID, keep), nil
}

func (m memDriverPoints) ListByRace(ctx context.Context, raceID string) ([]*models.DriverRacePoints, error) {
	all, _ := m.List(ctx)
	out := all[:0]
	for _, row := range all {
		if row.RaceID == raceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m memDriverPoints) List(_ context.Context) ([]*models.DriverRacePoints, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.DriverRacePoints, 0, len(m.s.driverPoints))
	for _, row := range m.s.driverPoints {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RaceID != out[j].RaceID {
			return out[i].RaceID < out[j].RaceID
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

type memTeamPoints struct{ s *MemoryStore }

func (m memTeamPoints) Upsert(_ context.Context, row *models.ConstructorRacePoints) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("constructor_race_points", row.TeamID+"/"+row.RaceID); err != nil {
		return err
	}
	row.UpdatedAt = m.s.now()
	m.s.teamPoints[[2]string{row.TeamID, row.RaceID}] = *row
	return nil
}

func (m memTeamPoints) DeleteByRaceExcept(_ context.Context, raceID string, keep []string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err, ok := m.s.failures["constructor_race_points"]; ok {
		return 0, err
	}
	return deleteExcept(m.s.teamPoints, raceID, keep), nil
}

func (m memTeamPoints) ListByRace(ctx context.Context, raceID string) ([]*models.ConstructorRacePoints, error) {
	all, _ := m.List(ctx)
	out := all[:0]
	for _, row := range all {
		if row.RaceID == raceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m memTeamPoints) List(_ context.Context) ([]*models.ConstructorRacePoints, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.ConstructorRacePoints, 0, len(m.s.teamPoints))
	for _, row := range m.s.teamPoints {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RaceID != out[j].RaceID {
			return out[i].RaceID < out[j].RaceID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

type memRacePoints struct{ s *MemoryStore }

func (m memRacePoints) Upsert(_ context.Context, row *models.RacePoints) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := [2]string{row.RaceID, row.PredictionID}
	if err := m.s.checkFailure("race_points", row.RaceID+"/"+row.PredictionID); err != nil {
		return err
	}
	if prev, ok := m.s.racePoints[key]; ok {
		row.ID = prev.ID
	} else {
		ensureID(&row.ID)
	}
	row.UpdatedAt = m.s.now()
	m.s.racePoints[key] = *row
	return nil
}

func (m memRacePoints) ListByRace(ctx context.Context, raceID string) ([]*models.RacePoints, error) {
	all, _ := m.List(ctx)
	out := all[:0]
	for _, row := range all {
		if row.RaceID == raceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m memRacePoints) List(_ context.Context) ([]*models.RacePoints, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.RacePoints, 0, len(m.s.racePoints))
	for _, row := range m.s.racePoints {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RaceID != out[j].RaceID {
			return out[i].RaceID < out[j].RaceID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type memProfiles struct{ s *MemoryStore }

func (m memProfiles) Upsert(_ context.Context, profile *models.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("profiles", profile.UserID); err != nil {
		return err
	}
	stored := m.s.profiles[profile.UserID]
	stored.UserID = profile.UserID
	stored.Username = profile.Username
	stored.UpdatedAt = m.s.now()
	m.s.profiles[profile.UserID] = stored
	return nil
}

func (m memProfiles) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m memProfiles) List(_ context.Context) ([]*models.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]*models.Profile, 0, len(m.s.profiles))
	for _, p := range m.s.profiles {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m memProfiles) RecomputePoints(_ context.Context, userID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.checkFailure("profiles", userID); err != nil {
		return 0, err
	}
	total := 0
	for _, row := range m.s.racePoints {
		if row.UserID == userID {
			total += row.TotalPoints
		}
	}
	p := m.s.profiles[userID]
	p.UserID = userID
	p.Points = total
	p.UpdatedAt = m.s.now()
	m.s.profiles[userID] = p
	return total, nil
}
