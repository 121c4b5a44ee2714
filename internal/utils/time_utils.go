package utils

import "time"

// DateOnly truncates t to midnight UTC. All billing dates are stored as
// DATE columns, so the time portion must never leak into comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped advances d by the given number of calendar months,
// preserving the day-of-month and clamping at the target month's last day
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year). time.AddDate
// normalizes overflow into the next month instead, which is wrong for
// billing cursors.
func AddMonthsClamped(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

func Ptr[T any](v T) *T { return &v }
