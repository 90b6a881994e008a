package service

import (
	"fmt"
	"strings"
	"time"
)

// Calendar start times arrive as ISO-8601 strings and may lack a timezone
// or be date-only (all-day events). Naive timestamps are read as UTC.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseEventTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty event time")
	}

	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable event time %q", value)
}

// wholeDaysUntil reports whole days between now and the deadline, never less
// than one. A past or same-day deadline still yields one day so a session
// can be planned today.
func wholeDaysUntil(now, due time.Time) int {
	days := int(due.Sub(now).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
