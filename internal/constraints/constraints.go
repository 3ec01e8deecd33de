// Package constraints derives a day's fixed anchors and free-time partition
// from natural-language routine preferences.
package constraints

import (
	"sort"

	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/textparse"
)

// Extract builds DayConstraints from a preference map. Unknown keys are
// ignored and unparseable values fall back to defaults; it never fails.
func Extract(prefs map[string]string) models.DayConstraints {
	wake := prefTime(prefs, constants.PrefWakeUp, models.MustParseTimeOfDay(constants.DefaultWakeTime))
	sleep := prefTime(prefs, constants.PrefSleep, models.MustParseTimeOfDay(constants.DefaultSleepTime))
	tl := models.Timeline{Wake: wake, Sleep: sleep}

	activities := []models.FixedActivity{
		{Name: constants.ActivityWakeRoutine, Start: wake, DurationMinutes: constants.WakeRoutineMin},
		{
			Name:            constants.ActivityBreakfast,
			Start:           prefTime(prefs, constants.PrefBreakfast, wake.Add(constants.BreakfastAfterWakeMin)),
			DurationMinutes: constants.BreakfastMin,
		},
		{
			Name:            constants.ActivityLunch,
			Start:           prefTime(prefs, constants.PrefLunch, models.MustParseTimeOfDay(constants.DefaultLunch)),
			DurationMinutes: constants.LunchMin,
		},
		{
			Name:            constants.ActivityDinner,
			Start:           prefTime(prefs, constants.PrefDinner, models.MustParseTimeOfDay(constants.DefaultDinner)),
			DurationMinutes: constants.DinnerMin,
		},
		{
			Name:            constants.ActivityShower,
			Start:           prefTime(prefs, constants.PrefShower, sleep.Add(-constants.ShowerBeforeSleepMin)),
			DurationMinutes: constants.ShowerMin,
		},
		{
			Name:            constants.ActivitySleepPrep,
			Start:           sleep.Add(-constants.SleepPrepBeforeMin),
			DurationMinutes: constants.SleepPrepMin,
		},
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return tl.Before(activities[i].Start, activities[j].Start)
	})

	kept := activities[:0]
	for _, a := range activities {
		if tl.Contains(a.Start) {
			kept = append(kept, a)
		}
	}

	slots := partition(tl, kept)

	total := 0
	for _, s := range slots {
		if s.Kind == models.SlotAvailable {
			total += s.Minutes()
		}
	}

	return models.DayConstraints{
		WakeTime:              wake,
		SleepTime:             sleep,
		FixedActivities:       kept,
		AvailableSlots:        slots,
		TotalAvailableMinutes: total,
	}
}

// partition walks the sorted activities and covers [wake, sleep) with
// Available, Buffer and Fixed slots, contiguous and non-overlapping.
// Activities that overlap an earlier one are clipped to the uncovered part.
func partition(tl models.Timeline, activities []models.FixedActivity) []models.TimeSlot {
	span := tl.Span()
	var slots []models.TimeSlot
	emit := func(from, to int, kind models.SlotKind) {
		if to > from {
			slots = append(slots, models.TimeSlot{Start: tl.At(from), End: tl.At(to), Kind: kind})
		}
	}

	cursor := 0
	for _, a := range activities {
		start := tl.Offset(a.Start)
		end := min(start+a.DurationMinutes, span)

		gap := start - cursor
		switch {
		case gap > constants.MinGapForAvailableMin:
			bufferStart := start - constants.BufferBeforeFixedMin
			emit(cursor, bufferStart, models.SlotAvailable)
			emit(bufferStart, start, models.SlotBuffer)
		case gap > 0:
			// Too short to schedule anything; keep coverage exact.
			emit(cursor, start, models.SlotBuffer)
		}

		emit(max(cursor, start), end, models.SlotFixed)
		cursor = max(cursor, end)
	}

	emit(cursor, span, models.SlotAvailable)
	return slots
}

func prefTime(prefs map[string]string, key string, fallback models.TimeOfDay) models.TimeOfDay {
	value, ok := prefs[key]
	if !ok {
		return fallback
	}
	if t, ok := textparse.ExtractTime(value); ok {
		return t
	}
	return fallback
}
