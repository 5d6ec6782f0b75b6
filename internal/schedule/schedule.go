// Package schedule turns an office's declarative weekly schedule into
// bookable dates and time slots. Everything here is pure: the caller reads
// config and appointments, the engine only computes.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// DaySchedule configures one weekday. A day offers either an explicit slot
// list or a start/end range cut into granularity-sized slots. Days with
// Available=false are never bookable regardless of the other fields.
type DaySchedule struct {
	Available          bool     `json:"available"`
	Slots              []string `json:"slots,omitempty"`
	Start              string   `json:"start,omitempty"`
	End                string   `json:"end,omitempty"`
	GranularityMinutes int      `json:"granularity_minutes,omitempty"`
}

// WeeklySchedule maps weekday index (0=Sunday..6=Saturday) to that day's
// configuration. Weekdays absent from the map are not bookable.
type WeeklySchedule map[int]DaySchedule

// Validate rejects schedules that cannot be stored: out-of-range weekday
// keys, unparseable slot times, or an inverted/zero-granularity range.
func (ws WeeklySchedule) Validate() error {
	for weekday, day := range ws {
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("weekday index %d out of range 0-6", weekday)
		}
		if !day.Available {
			continue
		}
		if len(day.Slots) > 0 {
			for _, slot := range day.Slots {
				if _, err := parseClock(slot); err != nil {
					return fmt.Errorf("weekday %d: %w", weekday, err)
				}
			}
			continue
		}
		start, err := parseClock(day.Start)
		if err != nil {
			return fmt.Errorf("weekday %d start: %w", weekday, err)
		}
		end, err := parseClock(day.End)
		if err != nil {
			return fmt.Errorf("weekday %d end: %w", weekday, err)
		}
		if end <= start {
			return fmt.Errorf("weekday %d: end %q not after start %q", weekday, day.End, day.Start)
		}
		if day.GranularityMinutes <= 0 {
			return fmt.Errorf("weekday %d: granularity must be positive", weekday)
		}
	}
	return nil
}

// parseClock parses an office-local "HH:MM" string into minutes since
// midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
