// Package scoring holds the pure point rules for championship standings and
// prediction games. Nothing in this package performs I/O.
package scoring

// TopTen is the number of classified positions that score.
const TopTen = 10

// GridSize is the number of cars on the grid; survivor counts are derived from it.
const GridSize = 20

// FastestLapBonusPoints is awarded to a top-10 finisher who set the fastest lap.
const FastestLapBonusPoints = 1

var championshipTable = [TopTen]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// ChampionshipPoints returns the points for a 1-based finishing position.
func ChampionshipPoints(position int) int {
	if position < 1 || position > TopTen {
		return 0
	}
	return championshipTable[position-1]
}

// FastestLapBonus returns the bonus for a driver finishing at position.
// Drivers outside the top 10 receive nothing even when they set the fastest lap.
func FastestLapBonus(position int, setFastestLap bool) int {
	if !setFastestLap || position < 1 || position > TopTen {
		return 0
	}
	return FastestLapBonusPoints
}

// DriverPoints is ChampionshipPoints plus the fastest lap bonus.
func DriverPoints(position int, setFastestLap bool) int {
	return ChampionshipPoints(position) + FastestLapBonus(position, setFastestLap)
}

// Classification maps each driver to their first 1-based position in order.
// Empty ids and repeated ids are ignored.
func Classification(order []string) map[string]int {
	positions := make(map[string]int, len(order))
	for i, id := range order {
		if id == "" {
			continue
		}
		if _, seen := positions[id]; seen {
			continue
		}
		positions[id] = i + 1
	}
	return positions
}
