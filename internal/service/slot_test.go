package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mtwilk/smart-study-buddy/internal/models"
)

var slotDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func busyAt(hour, durationMin int) models.BusyInterval {
	start := time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC)
	return models.BusyInterval{Start: start, End: start.Add(time.Duration(durationMin) * time.Minute)}
}

func TestClampHour(t *testing.T) {
	// 60-minute sessions can start no later than 22:00 for a 23:00 cutoff.
	assert.Equal(t, 7, ClampHour(5, 60, 7, 23))
	assert.Equal(t, 22, ClampHour(23, 60, 7, 23))
	assert.Equal(t, 14, ClampHour(14, 60, 7, 23))

	// A 90-minute session must start by 21:00 to finish inside the window.
	assert.Equal(t, 21, ClampHour(22, 90, 7, 23))
}

func TestFindSlot_PreferredHourFree(t *testing.T) {
	got := FindSlot(slotDay, 14, 60, nil, 7, 23)
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, slotDay.Day(), got.Day())
}

func TestFindSlot_WalksOutwardOnConflict(t *testing.T) {
	busy := []models.BusyInterval{busyAt(14, 60)}

	// 14:00 is taken; +1 is tried before -1.
	got := FindSlot(slotDay, 14, 60, busy, 7, 23)
	assert.Equal(t, 15, got.Hour())
}

func TestFindSlot_WalksDownWhenUpperTaken(t *testing.T) {
	busy := []models.BusyInterval{busyAt(14, 60), busyAt(15, 60)}

	got := FindSlot(slotDay, 14, 60, busy, 7, 23)
	assert.Equal(t, 13, got.Hour())
}

func TestFindSlot_HalfOpenIntervals(t *testing.T) {
	// A meeting ending exactly at 15:00 does not conflict with a session
	// starting at 15:00.
	busy := []models.BusyInterval{busyAt(14, 60)}

	got := FindSlot(slotDay, 15, 60, busy, 7, 23)
	assert.Equal(t, 15, got.Hour())
}

func TestFindSlot_FallsBackWhenDayIsFull(t *testing.T) {
	var busy []models.BusyInterval
	for hour := 0; hour < 24; hour++ {
		busy = append(busy, busyAt(hour, 60))
	}

	// Scheduling never fails outright; the clamped preferred hour comes
	// back even though it conflicts.
	got := FindSlot(slotDay, 14, 60, busy, 7, 23)
	assert.Equal(t, 14, got.Hour())
}

func TestFindSlot_ClampsOutOfWindowPreference(t *testing.T) {
	got := FindSlot(slotDay, 5, 60, nil, 7, 23)
	assert.Equal(t, 7, got.Hour())

	got = FindSlot(slotDay, 23, 60, nil, 7, 23)
	assert.Equal(t, 22, got.Hour())
}
