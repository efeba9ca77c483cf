// Package calendarops provides pure civil-calendar arithmetic: days in a
// month or year, leap-year detection, ISO week numbering, and day-of-week
// or day-of-year lookups. Every function here is a pure function of its
// inputs; none of them touch a clock or any other ambient state.
package calendarops

import "time"

// IsLeapYear reports whether year y is a leap year under the proleptic
// Gregorian calendar.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var daysInMonthTable = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in month m (1-12) of year y.
func DaysInMonth(y, m int) int {
	if m == 2 && IsLeapYear(y) {
		return 29
	}
	return daysInMonthTable[m-1]
}

// DaysInYear returns 365 or 366 depending on whether y is a leap year.
func DaysInYear(y int) int {
	if IsLeapYear(y) {
		return 366
	}
	return 365
}

// daysFromCivil converts a proleptic Gregorian civil date into a day count
// relative to 1970-01-01, using Howard Hinnant's days_from_civil algorithm.
// It is exact for any year representable in an int and avoids the DST
// pitfalls of subtracting two time.Time values.
func daysFromCivil(y, m, d int) int64 {
	yy := int64(y)
	if m <= 2 {
		yy--
	}
	era := yy
	if yy < 0 {
		era = yy - 399
	}
	era /= 400
	yoe := yy - era*400
	var mp int64
	mm := int64(m)
	if mm > 2 {
		mp = mm - 3
	} else {
		mp = mm + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DayOfWeek returns the ISO day of week for y-m-d: Monday=1 .. Sunday=7.
func DayOfWeek(y, m, d int) int {
	days := daysFromCivil(y, m, d)
	// 1970-01-01 was a Thursday (ISO day 4).
	wd := (days+3)%7 + 1
	if wd <= 0 {
		wd += 7
	}
	return int(wd)
}

// DayOfYear returns the 1-based ordinal day of y-m-d within its year.
func DayOfYear(y, m, d int) int {
	jan1 := daysFromCivil(y, 1, 1)
	this := daysFromCivil(y, m, d)
	return int(this-jan1) + 1
}

// isoWeekOneMonday returns the Monday that starts ISO week 1 of year y,
// expressed as a days-from-civil count.
func isoWeekOneMonday(y int) int64 {
	jan4 := daysFromCivil(y, 1, 4)
	jan4Weekday := DayOfWeek(y, 1, 4)
	return jan4 - int64(jan4Weekday-1)
}

// WeekOfYear returns the week number of y-m-d, always counted relative to
// the calendar year y: week 1 starts on the Monday of y's ISO week 1, up to
// three leading days of a year fall in week 0 rather than rolling into the
// previous year's week 52/53, and trailing December days that ISO numbering
// would put in week 1 of y+1 are reported as week 53 of y.
func WeekOfYear(y, m, d int) int {
	days := daysFromCivil(y, m, d)
	week1Monday := isoWeekOneMonday(y)
	if days < week1Monday {
		// Falls before this year's week 1: week 0.
		return 0
	}
	return int((days-week1Monday)/7) + 1
}

// WeeksInYear returns the number of ISO weeks (52 or 53) in year y.
func WeeksInYear(y int) int {
	dec28 := daysFromCivil(y, 12, 28)
	week1Monday := isoWeekOneMonday(y)
	return int((dec28-week1Monday)/7) + 1
}

// Civil is a year/month/day/hour/minute/second/nanosecond tuple used as the
// common currency between TimePattern and calendar arithmetic, independent
// of time.Time's monotonic-reading baggage.
type Civil struct {
	Year, Month, Day                   int
	Hour, Minute, Second, Nanosecond   int
	Location                           *time.Location
}

// FromTime decomposes t, in its own location, into a Civil tuple.
func FromTime(t time.Time) Civil {
	y, m, d := t.Date()
	return Civil{
		Year: y, Month: int(m), Day: d,
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Nanosecond: t.Nanosecond(),
		Location:   t.Location(),
	}
}

// Time reconstructs a time.Time from the Civil tuple, defaulting to UTC
// when no location is set.
func (c Civil) Time() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, c.Nanosecond, loc)
}
