package calendarops

import "testing"

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2000, true},
		{1900, false},
		{2020, true},
		{2021, false},
		{2400, true},
	}
	for _, c := range cases {
		if got := IsLeapYear(c.year); got != c.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2020, 2); got != 29 {
		t.Errorf("DaysInMonth(2020, 2) = %d, want 29", got)
	}
	if got := DaysInMonth(2021, 2); got != 28 {
		t.Errorf("DaysInMonth(2021, 2) = %d, want 28", got)
	}
	if got := DaysInMonth(2021, 4); got != 30 {
		t.Errorf("DaysInMonth(2021, 4) = %d, want 30", got)
	}
}

func TestDaysInYear(t *testing.T) {
	if got := DaysInYear(2020); got != 366 {
		t.Errorf("DaysInYear(2020) = %d, want 366", got)
	}
	if got := DaysInYear(2021); got != 365 {
		t.Errorf("DaysInYear(2021) = %d, want 365", got)
	}
}

func TestDayOfWeek(t *testing.T) {
	// 2018-05-30 is a Wednesday.
	if got := DayOfWeek(2018, 5, 30); got != 3 {
		t.Errorf("DayOfWeek(2018-05-30) = %d, want 3 (Wednesday)", got)
	}
	// 2017-03-15 is a Wednesday.
	if got := DayOfWeek(2017, 3, 15); got != 3 {
		t.Errorf("DayOfWeek(2017-03-15) = %d, want 3", got)
	}
	// 1970-01-01 is a Thursday.
	if got := DayOfWeek(1970, 1, 1); got != 4 {
		t.Errorf("DayOfWeek(1970-01-01) = %d, want 4 (Thursday)", got)
	}
}

func TestDayOfYear(t *testing.T) {
	if got := DayOfYear(2020, 1, 1); got != 1 {
		t.Errorf("DayOfYear(2020-01-01) = %d, want 1", got)
	}
	if got := DayOfYear(2020, 12, 31); got != 366 {
		t.Errorf("DayOfYear(2020-12-31) = %d, want 366", got)
	}
	if got := DayOfYear(2021, 3, 1); got != 60 {
		t.Errorf("DayOfYear(2021-03-01) = %d, want 60", got)
	}
}

func TestWeekOfYear(t *testing.T) {
	cases := []struct {
		y, m, d int
		want    int
	}{
		{2021, 1, 1, 0},  // Friday, before week 1's Monday (2021-01-04)
		{2021, 1, 4, 1},  // Monday, week 1
		{2020, 12, 31, 53}, // 2020 had an ISO week 53
		{2019, 12, 30, 53}, // ISO week 1 of 2020, counted as 2019's week 53
	}
	for _, c := range cases {
		if got := WeekOfYear(c.y, c.m, c.d); got != c.want {
			t.Errorf("WeekOfYear(%d-%d-%d) = %d, want %d", c.y, c.m, c.d, got, c.want)
		}
	}
}

func TestWeeksInYear(t *testing.T) {
	if got := WeeksInYear(2020); got != 53 {
		t.Errorf("WeeksInYear(2020) = %d, want 53", got)
	}
	if got := WeeksInYear(2021); got != 52 {
		t.Errorf("WeeksInYear(2021) = %d, want 52", got)
	}
}
