package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampedEndOfMonth(t *testing.T) {
	cases := []struct {
		name   string
		in     time.Time
		months int
		want   time.Time
	}{
		{"jan 31 to leap feb", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 to non-leap feb", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"mar 31 to apr 30", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"feb 29 plus a year", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
		{"mid-month unchanged", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"year rollover", date(2024, time.December, 31), 1, date(2025, time.January, 31)},
	}
	for _, tc := range cases {
		got := AddMonthsClamped(tc.in, tc.months)
		if !got.Equal(tc.want) {
			t.Errorf("%s: AddMonthsClamped(%s, %d) = %s, want %s",
				tc.name, tc.in.Format("2006-01-02"), tc.months,
				got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestAddMonthsClampedNeverNormalizes(t *testing.T) {
	// time.AddDate would turn Jan 31 + 1 month into Mar 2/3; the clamped
	// version must stay inside February.
	got := AddMonthsClamped(date(2023, time.January, 31), 1)
	if got.Month() != time.February {
		t.Fatalf("expected February, got %s", got.Format("2006-01-02"))
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, time.March, 7, 15, 42, 13, 999, time.UTC)
	got := DateOnly(in)
	want := date(2024, time.March, 7)
	if !got.Equal(want) {
		t.Fatalf("DateOnly(%s) = %s, want %s", in, got, want)
	}
}
