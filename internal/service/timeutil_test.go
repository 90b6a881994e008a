package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-10T10:00:00Z", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)},
		{"2025-06-10T10:00:00+02:00", time.Date(2025, 6, 10, 10, 0, 0, 0, time.FixedZone("", 2*3600))},
		{"2025-06-10T10:00:00", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)},
		{"2025-06-10", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseEventTime(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, tt.want.Equal(got), "input %q: got %v", tt.in, got)
	}

	_, err := parseEventTime("")
	require.Error(t, err)

	_, err = parseEventTime("sometime next week")
	require.Error(t, err)
}

func TestWholeDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 6, wholeDaysUntil(now, now.AddDate(0, 0, 6)))
	assert.Equal(t, 1, wholeDaysUntil(now, now.Add(12*time.Hour)))
	// Past deadlines still leave one day to plan with.
	assert.Equal(t, 1, wholeDaysUntil(now, now.AddDate(0, 0, -2)))
}
