package schedule

import (
	"errors"
	"sort"
	"time"

	"civicdesk/internal/model"
)

// MaxLookaheadDays bounds the forward scan of NextWorkingDay.
const MaxLookaheadDays = 14

// ErrNoWorkingDay signals that no working day exists within the lookahead
// window. A valid, non-error outcome for callers to render, distinct from a
// config error.
var ErrNoWorkingDay = errors.New("no working day within lookahead")

// BookedSlot is one existing appointment on the date under consideration,
// pre-filtered by office and date by the data-access layer.
type BookedSlot struct {
	Time   string
	Status model.AppointmentStatus
}

// IsWorkingDay reports whether the office takes bookings on the given date's
// weekday. A nil schedule or absent weekday means not bookable; any weekend
// filtering done by a UI is a display convenience, this check is the
// authority.
func IsWorkingDay(sched WeeklySchedule, date time.Time) bool {
	day, ok := sched[int(date.Weekday())]
	return ok && day.Available
}

// NextWorkingDay scans forward from the given date (inclusive) and returns
// the first working day. When every day within MaxLookaheadDays is
// unavailable it returns ErrNoWorkingDay rather than an unchecked date.
func NextWorkingDay(sched WeeklySchedule, from time.Time) (time.Time, error) {
	for i := 0; i < MaxLookaheadDays; i++ {
		candidate := from.AddDate(0, 0, i)
		if IsWorkingDay(sched, candidate) {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoWorkingDay
}

// AvailableSlots returns the free slot times for one office date in
// chronological order. Slots taken by a pending or approved appointment are
// removed; cancelled and rejected appointments release their slot back into
// the pool. A non-working day or malformed day config yields an empty
// result, never a panic.
func AvailableSlots(sched WeeklySchedule, date time.Time, booked []BookedSlot) []string {
	if !IsWorkingDay(sched, date) {
		return nil
	}

	candidates := expandDay(sched[int(date.Weekday())])
	if len(candidates) == 0 {
		return nil
	}

	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		if b.Status.Blocks() {
			taken[b.Time] = true
		}
	}

	free := candidates[:0]
	for _, slot := range candidates {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free
}

// expandDay produces the day's candidate slots in chronological order.
// Unparseable entries and malformed ranges are skipped, not fatal.
func expandDay(day DaySchedule) []string {
	if len(day.Slots) > 0 {
		minutes := make([]int, 0, len(day.Slots))
		for _, slot := range day.Slots {
			m, err := parseClock(slot)
			if err != nil {
				continue
			}
			minutes = append(minutes, m)
		}
		sort.Ints(minutes)
		slots := make([]string, 0, len(minutes))
		for i, m := range minutes {
			if i > 0 && minutes[i-1] == m {
				continue // duplicate time
			}
			slots = append(slots, formatClock(m))
		}
		return slots
	}

	start, err := parseClock(day.Start)
	if err != nil {
		return nil
	}
	end, err := parseClock(day.End)
	if err != nil || end <= start || day.GranularityMinutes <= 0 {
		return nil
	}

	var slots []string
	for m := start; m < end; m += day.GranularityMinutes {
		slots = append(slots, formatClock(m))
	}
	return slots
}

// HasSlot reports whether the given time is one of the free slots for the
// date. Used as the final server-side check before an appointment write.
func HasSlot(sched WeeklySchedule, date time.Time, booked []BookedSlot, slot string) bool {
	for _, s := range AvailableSlots(sched, date, booked) {
		if s == slot {
			return true
		}
	}
	return false
}
