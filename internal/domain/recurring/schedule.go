package recurring

import "time"

// disabledHorizon is how far an unknown frequency pushes NextDate, which
// takes the rule out of every realistic poll.
const disabledHorizon = 100

// Advance returns the due date following from for frequency f.
//
// Month and year steps keep the day of month when it exists and otherwise
// land on the last day of the target month: Jan 31 becomes Feb 28 (or 29),
// Feb 29 plus a year becomes Feb 28. The clock time of from is preserved.
func Advance(from time.Time, f Frequency, now time.Time) time.Time {
	switch f {
	case FrequencyDiaria:
		return from.AddDate(0, 0, 1)
	case FrequencySemanal:
		return from.AddDate(0, 0, 7)
	case FrequencyMensual:
		return addMonthsClamped(from, 1)
	case FrequencyAnual:
		return addMonthsClamped(from, 12)
	default:
		return now.AddDate(disabledHorizon, 0, 0)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(firstOfTarget); day > last {
		day = last
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
