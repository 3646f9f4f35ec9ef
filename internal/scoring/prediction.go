package scoring

import (
	"github.com/yourusername/pitwall-picks/internal/models"
)

// Grid prediction awards per predicted slot.
const (
	GridExactPoints    = 3
	GridAdjacentPoints = 2
	GridInTopTenPoints = 1
	GridMissPenalty    = -1
)

// PoleTimeExactRaceBonus is added to race points on an exact pole time.
const PoleTimeExactRaceBonus = 5

// FastestLapPredictionPoints is awarded for naming the fastest lap driver.
const FastestLapPredictionPoints = 9

// race prediction award keyed by actual finishing position; 4th to 10th are flat.
var racePredictionTable = [TopTen]int{25, 18, 15, 12, 12, 12, 12, 12, 12, 12}

// survivor count difference -> points
var dnfTable = []int{5, 3, 2, 1}

// Breakdown is the per-category score of a single prediction
type Breakdown struct {
	Qualifying int `json:"qualifying_points"`
	Race       int `json:"race_points"`
	PoleTime   int `json:"pole_time_points"`
	FastestLap int `json:"fastest_lap_points"`
	DNF        int `json:"dnf_points"`
	Total      int `json:"total_points"`
}

// QualifyingPoints scores a grid prediction against the actual grid. Only the
// first ten slots of each list take part. A named driver missing from the
// actual top ten costs GridMissPenalty, but an empty slot names nobody and
// scores 0, not the penalty. Repeated drivers count at their first slot only.
func QualifyingPoints(predicted, actual []string) int {
	actualTop := Classification(firstN(actual, TopTen))
	seen := make(map[string]struct{}, TopTen)

	points := 0
	for slot, driverID := range firstN(predicted, TopTen) {
		if driverID == "" {
			continue
		}
		if _, dup := seen[driverID]; dup {
			continue
		}
		seen[driverID] = struct{}{}

		position, found := actualTop[driverID]
		if !found {
			points += GridMissPenalty
			continue
		}
		switch distance := abs(position - 1 - slot); {
		case distance == 0:
			points += GridExactPoints
		case distance == 1:
			points += GridAdjacentPoints
		default:
			points += GridInTopTenPoints
		}
	}
	return points
}

// RacePredictionPoints awards every driver picked in the first ten slots who
// actually finished in the top ten, by their actual position. poleExact adds
// the exact pole time bonus.
func RacePredictionPoints(predicted, actual []string, poleExact bool) int {
	actualTop := Classification(firstN(actual, TopTen))
	seen := make(map[string]struct{}, TopTen)

	points := 0
	for _, driverID := range firstN(predicted, TopTen) {
		if driverID == "" {
			continue
		}
		if _, dup := seen[driverID]; dup {
			continue
		}
		seen[driverID] = struct{}{}

		if position, found := actualTop[driverID]; found {
			points += racePredictionTable[position-1]
		}
	}
	if poleExact {
		points += PoleTimeExactRaceBonus
	}
	return points
}

// FastestLapPoints is a flat award for naming the fastest lap driver.
func FastestLapPoints(predicted, actual string) int {
	if predicted == "" || predicted != actual {
		return 0
	}
	return FastestLapPredictionPoints
}

// Survivors is the number of cars expected to finish given a DNF list.
func Survivors(dnf []string) int {
	return GridSize - len(Classification(dnf))
}

// DNFPoints compares predicted and actual survivor counts; identities do not matter.
func DNFPoints(predicted, actual []string) int {
	diff := abs(Survivors(predicted) - Survivors(actual))
	if diff >= len(dnfTable) {
		return 0
	}
	return dnfTable[diff]
}

// Score applies every rule to a prediction. It is a pure function of its inputs.
func Score(p *models.Prediction, r *models.RaceResult) Breakdown {
	poleExact := PoleTimeExact(p.PoleTime, r.PoleTime)

	b := Breakdown{
		Qualifying: QualifyingPoints(p.QualifyingResults, r.QualifyingResults),
		Race:       RacePredictionPoints(p.Top10, r.RaceResults, poleExact),
		PoleTime:   PoleTimePoints(p.PoleTime, r.PoleTime),
		FastestLap: FastestLapPoints(p.FastestLap, r.FastestLap),
		DNF:        DNFPoints(p.DNFPredictions, r.DNFDrivers),
	}
	b.Total = b.Qualifying + b.Race + b.PoleTime + b.FastestLap + b.DNF
	return b
}

// Apply copies a breakdown onto a points row.
func (b Breakdown) Apply(rp *models.RacePoints) {
	rp.QualifyingPoints = b.Qualifying
	rp.RacePoints = b.Race
	rp.PoleTimePoints = b.PoleTime
	rp.FastestLapPoints = b.FastestLap
	rp.DNFPoints = b.DNF
	rp.TotalPoints = b.Total
}

func firstN(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
