package service

import (
	"math"
	"time"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

const (
	DefaultMinHour = 7
	DefaultMaxHour = 23
)

// latestStartHour is the last whole hour a session of the given duration can
// start and still end by maxHour.
func latestStartHour(durationMin, maxHour int) int {
	return int(math.Floor(float64(maxHour) - float64(durationMin)/60.0))
}

// ClampHour forces the preferred hour into the schedulable window
// [minHour, maxHour - duration].
func ClampHour(preferredHour, durationMin, minHour, maxHour int) int {
	latest := latestStartHour(durationMin, maxHour)

	if preferredHour < minHour {
		return minHour
	}
	if preferredHour > latest {
		return latest
	}
	return preferredHour
}

// FindSlot returns the start time closest to the preferred hour on the given
// day whose [start, start+duration) interval does not overlap any busy
// interval. Candidates are walked outward from the clamped preferred hour
// (+1, -1, +2, -2, ...) within the schedulable window. When every candidate
// conflicts, the clamped preferred hour is returned anyway: scheduling must
// never fail outright, and the user can move a conflicting session by hand.
func FindSlot(day time.Time, preferredHour, durationMin int, busy []models.BusyInterval, minHour, maxHour int) time.Time {
	hour := ClampHour(preferredHour, durationMin, minHour, maxHour)
	latest := latestStartHour(durationMin, maxHour)

	candidates := []int{hour}
	for offset := 1; offset < maxHour-minHour; offset++ {
		if hour+offset <= latest {
			candidates = append(candidates, hour+offset)
		}
		if hour-offset >= minHour {
			candidates = append(candidates, hour-offset)
		}
	}

	duration := time.Duration(durationMin) * time.Minute

	for _, candidate := range candidates {
		start := atHour(day, candidate)
		end := start.Add(duration)

		if !overlapsAny(start, end, busy) {
			return start
		}
	}

	return atHour(day, hour)
}

func atHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

// Half-open interval test: [start, end) overlaps [b.Start, b.End).
func overlapsAny(start, end time.Time, busy []models.BusyInterval) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
