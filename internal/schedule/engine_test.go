package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"civicdesk/internal/model"
)

// date returns a time.Time falling on the given weekday.
func date(t *testing.T, weekday time.Weekday) time.Time {
	t.Helper()
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // a Sunday
	return d.AddDate(0, 0, int(weekday))
}

func TestIsWorkingDay(t *testing.T) {
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00"}},
		2: {Available: false, Slots: []string{"09:00"}},
	}

	require.True(t, IsWorkingDay(sched, date(t, time.Monday)))
	// Explicitly marked unavailable.
	require.False(t, IsWorkingDay(sched, date(t, time.Tuesday)))
	// Absent from the map entirely.
	require.False(t, IsWorkingDay(sched, date(t, time.Wednesday)))
	// Nil schedule never books.
	require.False(t, IsWorkingDay(nil, date(t, time.Monday)))
}

func TestNextWorkingDay(t *testing.T) {
	sched := WeeklySchedule{
		3: {Available: true, Start: "09:00", End: "12:00", GranularityMinutes: 60},
	}

	from := date(t, time.Monday)
	got, err := NextWorkingDay(sched, from)
	require.NoError(t, err)
	require.Equal(t, time.Wednesday, got.Weekday())
	require.Equal(t, from.AddDate(0, 0, 2), got)

	// From a working day the scan is inclusive.
	got, err = NextWorkingDay(sched, date(t, time.Wednesday))
	require.NoError(t, err)
	require.Equal(t, date(t, time.Wednesday), got)
}

func TestNextWorkingDayExhaustsLookahead(t *testing.T) {
	// All seven weekdays unavailable: must signal exhaustion, never hand
	// back the input date unchecked.
	from := date(t, time.Monday)

	_, err := NextWorkingDay(WeeklySchedule{}, from)
	require.ErrorIs(t, err, ErrNoWorkingDay)

	disabled := WeeklySchedule{}
	for wd := 0; wd <= 6; wd++ {
		disabled[wd] = DaySchedule{Available: false}
	}
	_, err = NextWorkingDay(disabled, from)
	require.ErrorIs(t, err, ErrNoWorkingDay)
}

func TestAvailableSlotsExplicitList(t *testing.T) {
	// Monday only, two slots, one already held by an approved appointment.
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00", "10:00"}},
	}
	monday := date(t, time.Monday)

	got := AvailableSlots(sched, monday, []BookedSlot{
		{Time: "09:00", Status: model.AppointmentApproved},
	})
	require.Equal(t, []string{"10:00"}, got)
}

func TestAvailableSlotsCancelledReleasesSlot(t *testing.T) {
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00", "10:00"}},
	}
	monday := date(t, time.Monday)

	got := AvailableSlots(sched, monday, []BookedSlot{
		{Time: "09:00", Status: model.AppointmentCancelled},
		{Time: "10:00", Status: model.AppointmentPending},
	})
	require.Equal(t, []string{"09:00"}, got)
}

func TestAvailableSlotsNonWorkingDay(t *testing.T) {
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00"}},
	}
	require.Empty(t, AvailableSlots(sched, date(t, time.Sunday), nil))
	require.Empty(t, AvailableSlots(nil, date(t, time.Monday), nil))
}

func TestAvailableSlotsRangeExpansion(t *testing.T) {
	sched := WeeklySchedule{
		5: {Available: true, Start: "09:00", End: "11:00", GranularityMinutes: 30},
	}
	got := AvailableSlots(sched, date(t, time.Friday), nil)
	require.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, got)
}

func TestAvailableSlotsChronologicalAndDeduplicated(t *testing.T) {
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"14:00", "09:00", "9:00", "10:30"}},
	}
	got := AvailableSlots(sched, date(t, time.Monday), nil)
	require.Equal(t, []string{"09:00", "10:30", "14:00"}, got)
}

func TestAvailableSlotsMalformedConfig(t *testing.T) {
	// Malformed day config is "no availability", not a crash.
	cases := []WeeklySchedule{
		{1: {Available: true}},                                                // neither slots nor range
		{1: {Available: true, Start: "oops", End: "12:00", GranularityMinutes: 30}}, // bad start
		{1: {Available: true, Start: "10:00", End: "09:00", GranularityMinutes: 30}}, // inverted range
		{1: {Available: true, Start: "09:00", End: "12:00"}},                  // zero granularity
		{1: {Available: true, Slots: []string{"nope", "also nope"}}},          // all slots unparseable
	}
	for i, sched := range cases {
		require.Empty(t, AvailableSlots(sched, date(t, time.Monday), nil), "case %d", i)
	}
}

func TestHasSlot(t *testing.T) {
	sched := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00", "10:00"}},
	}
	monday := date(t, time.Monday)
	booked := []BookedSlot{{Time: "09:00", Status: model.AppointmentPending}}

	require.True(t, HasSlot(sched, monday, booked, "10:00"))
	require.False(t, HasSlot(sched, monday, booked, "09:00"))
	require.False(t, HasSlot(sched, monday, booked, "11:00"))
}

func TestWeeklyScheduleValidate(t *testing.T) {
	ok := WeeklySchedule{
		1: {Available: true, Slots: []string{"09:00", "10:00"}},
		2: {Available: true, Start: "09:00", End: "17:00", GranularityMinutes: 30},
		6: {Available: false},
	}
	require.NoError(t, ok.Validate())

	require.Error(t, WeeklySchedule{7: {Available: true, Slots: []string{"09:00"}}}.Validate())
	require.Error(t, WeeklySchedule{1: {Available: true, Slots: []string{"25:00"}}}.Validate())
	require.Error(t, WeeklySchedule{1: {Available: true, Start: "10:00", End: "09:00", GranularityMinutes: 30}}.Validate())
	require.Error(t, WeeklySchedule{1: {Available: true, Start: "09:00", End: "17:00"}}.Validate())
	// Unavailable day needs no slot details.
	require.NoError(t, WeeklySchedule{0: {Available: false}}.Validate())
}
