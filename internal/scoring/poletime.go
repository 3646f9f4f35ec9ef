package scoring

import (
	"strconv"
	"strings"
)

// Pole time tiers, as digit differences of the M:SS.mmm encoding.
const (
	PoleTimeExactPoints = 10
	PoleTimeCloseLimit  = 100
	PoleTimeClosePoints = 5
	PoleTimeNearLimit   = 250
	PoleTimeNearPoints  = 3
	PoleTimeFarLimit    = 500
	PoleTimeFarPoints   = 1
)

// PoleTimeDigits strips every non-digit from a lap time and parses the rest,
// so "1:23.456" becomes 123456. ok is false when nothing numeric remains.
func PoleTimeDigits(lapTime string) (value int64, ok bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, lapTime)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PoleTimeDiff is the absolute difference between the digit encodings of two
// lap times. ok is false when either side cannot be compared.
func PoleTimeDiff(predicted, actual string) (diff int64, ok bool) {
	p, ok := PoleTimeDigits(predicted)
	if !ok {
		return 0, false
	}
	a, ok := PoleTimeDigits(actual)
	if !ok {
		return 0, false
	}
	diff = p - a
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

// PoleTimeExact reports an exact, comparable pole time match.
func PoleTimeExact(predicted, actual string) bool {
	diff, ok := PoleTimeDiff(predicted, actual)
	return ok && diff == 0
}

// PoleTimePoints scores a pole time guess by tier.
func PoleTimePoints(predicted, actual string) int {
	diff, ok := PoleTimeDiff(predicted, actual)
	if !ok {
		return 0
	}
	switch {
	case diff == 0:
		return PoleTimeExactPoints
	case diff <= PoleTimeCloseLimit:
		return PoleTimeClosePoints
	case diff <= PoleTimeNearLimit:
		return PoleTimeNearPoints
	case diff <= PoleTimeFarLimit:
		return PoleTimeFarPoints
	default:
		return 0
	}
}

// ValidLapTime reports whether s looks like M:SS.mmm.
func ValidLapTime(s string) bool {
	minutes, rest, found := strings.Cut(s, ":")
	if !found || minutes == "" || !allDigits(minutes) {
		return false
	}
	seconds, millis, found := strings.Cut(rest, ".")
	if !found || len(seconds) != 2 || len(millis) != 3 {
		return false
	}
	if !allDigits(seconds) || !allDigits(millis) {
		return false
	}
	return seconds[0] <= '5'
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
