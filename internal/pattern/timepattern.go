package pattern

import (
	"time"

	"github.com/crystallabs/virtualdate/internal/apperrors"
	"github.com/crystallabs/virtualdate/internal/calendarops"
)

// maxReconcileIterations bounds TimePattern.Materialize's higher-level
// reconciliation loop (week-of-year, day-of-week, day-of-year).
const maxReconcileIterations = 10

// TimePattern is a record of 11 FieldPattern slots plus an optional
// location. A slot left Unset always matches; a TimePattern is
// "materialized" once every slot is either Unset or Exact.
type TimePattern struct {
	Year, Month, Day              FieldPattern
	Week, DayOfWeek, DayOfYear    FieldPattern
	Hour, Minute, Second          FieldPattern
	Millisecond, Nanosecond       FieldPattern
	Location                     *time.Location
}

// New returns a TimePattern with every slot Unset and no location pinned.
func New() TimePattern {
	u := Unset()
	return TimePattern{
		Year: u, Month: u, Day: u,
		Week: u, DayOfWeek: u, DayOfYear: u,
		Hour: u, Minute: u, Second: u,
		Millisecond: u, Nanosecond: u,
	}
}

func intp(n int) *int { return &n }

// civilOf converts instant into this pattern's location (leaving it in its
// own location when the pattern has none) and returns its civil field values.
func (p TimePattern) civilOf(instant time.Time) (y, mo, d, wk, dow, doy, hh, mi, ss, ms, ns int) {
	loc := p.Location
	if loc == nil {
		loc = instant.Location()
	}
	t := instant.In(loc)
	yy, mm, dd := t.Date()
	y, mo, d = yy, int(mm), dd
	wk = calendarops.WeekOfYear(y, mo, d)
	dow = calendarops.DayOfWeek(y, mo, d)
	doy = calendarops.DayOfYear(y, mo, d)
	hh, mi, ss = t.Hour(), t.Minute(), t.Second()
	ns = t.Nanosecond()
	ms = ns / 1_000_000
	return
}

// MatchesDate reports whether instant's 6 date slots (year through
// day-of-year) all match.
func (p TimePattern) MatchesDate(instant time.Time) bool {
	y, mo, d, wk, dow, doy, _, _, _, _, _ := p.civilOf(instant)
	if !p.Year.Match(y, intp(9999)) {
		return false
	}
	if !p.Month.Match(mo, intp(12)) {
		return false
	}
	daysInMonth := calendarops.DaysInMonth(y, mo)
	if !p.Day.Match(d, intp(daysInMonth)) {
		return false
	}
	weeksInYear := calendarops.WeeksInYear(y)
	if !p.Week.Match(wk, intp(weeksInYear)) {
		return false
	}
	if !p.DayOfWeek.Match(dow, intp(7)) {
		return false
	}
	daysInYear := calendarops.DaysInYear(y)
	if !p.DayOfYear.Match(doy, intp(daysInYear)) {
		return false
	}
	return true
}

// MatchesTime reports whether instant's 5 time slots (hour through
// nanosecond) all match.
func (p TimePattern) MatchesTime(instant time.Time) bool {
	_, _, _, _, _, _, hh, mi, ss, ms, ns := p.civilOf(instant)
	if !p.Hour.Match(hh, intp(23)) {
		return false
	}
	if !p.Minute.Match(mi, intp(59)) {
		return false
	}
	if !p.Second.Match(ss, intp(59)) {
		return false
	}
	if !p.Millisecond.Match(ms, intp(999)) {
		return false
	}
	if !p.Nanosecond.Match(ns, intp(999_999_999)) {
		return false
	}
	return true
}

// Matches reports whether instant satisfies every slot.
func (p TimePattern) Matches(instant time.Time) bool {
	return p.MatchesDate(instant) && p.MatchesTime(instant)
}

func mod(a, m int) int {
	if m <= 0 {
		return 0
	}
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func addDays(y, mo, d, n int) (int, int, int) {
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, 0, n)
	yy, mm, dd := t.Date()
	return yy, int(mm), dd
}

// Materialize resolves this pattern to a single concrete instant, using
// hint's civil fields as the defaults for any slot whose current value
// already matches. Date fields (year, month, day) and time fields (hour,
// minute, second, nanosecond/millisecond) are resolved directly; the
// higher-level fields (week-of-year, day-of-week, day-of-year) are then
// reconciled by repeatedly advancing the candidate date, up to
// maxReconcileIterations times.
func (p TimePattern) Materialize(hint time.Time) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = hint.Location()
	}
	h := hint.In(loc)
	hy, hmo, hd := h.Date()

	y, err := p.Year.Materialize(hy, intp(9999), true)
	if err != nil {
		return time.Time{}, err
	}
	mo, err := p.Month.Materialize(int(hmo), intp(12), true)
	if err != nil {
		return time.Time{}, err
	}
	d, err := p.Day.Materialize(hd, intp(calendarops.DaysInMonth(y, mo)), true)
	if err != nil {
		return time.Time{}, err
	}
	hh, err := p.Hour.Materialize(h.Hour(), intp(23), true)
	if err != nil {
		return time.Time{}, err
	}
	mi, err := p.Minute.Materialize(h.Minute(), intp(59), true)
	if err != nil {
		return time.Time{}, err
	}
	ss, err := p.Second.Materialize(h.Second(), intp(59), true)
	if err != nil {
		return time.Time{}, err
	}
	ns, err := p.Nanosecond.Materialize(h.Nanosecond(), intp(999_999_999), true)
	if err != nil {
		return time.Time{}, err
	}
	if p.Nanosecond.Kind() == KindUnset && p.Millisecond.Kind() != KindUnset {
		msv, err := p.Millisecond.Materialize(h.Nanosecond()/1_000_000, intp(999), true)
		if err != nil {
			return time.Time{}, err
		}
		ns = msv * 1_000_000
	}

	reconciled := false
	for i := 0; i < maxReconcileIterations; i++ {
		changed := false

		if p.Week.Kind() != KindUnset {
			curWeek := calendarops.WeekOfYear(y, mo, d)
			weeksInYear := calendarops.WeeksInYear(y)
			reqWeek, err := p.Week.Materialize(curWeek, intp(weeksInYear), true)
			if err != nil {
				return time.Time{}, err
			}
			if reqWeek != curWeek {
				deltaWeeks := mod(reqWeek-curWeek, weeksInYear+1)
				y, mo, d = addDays(y, mo, d, deltaWeeks*7)
				changed = true
			}
		}

		if p.DayOfWeek.Kind() != KindUnset {
			curDow := calendarops.DayOfWeek(y, mo, d)
			reqDow, err := p.DayOfWeek.Materialize(curDow, intp(7), true)
			if err != nil {
				return time.Time{}, err
			}
			if reqDow != curDow {
				delta := mod(reqDow-curDow, 7)
				y, mo, d = addDays(y, mo, d, delta)
				changed = true
			}
		}

		if p.DayOfYear.Kind() != KindUnset {
			curDoy := calendarops.DayOfYear(y, mo, d)
			daysInYear := calendarops.DaysInYear(y)
			reqDoy, err := p.DayOfYear.Materialize(curDoy, intp(daysInYear), true)
			if err != nil {
				return time.Time{}, err
			}
			if reqDoy != curDoy {
				delta := mod(reqDoy-curDoy, daysInYear)
				y, mo, d = addDays(y, mo, d, delta)
				changed = true
			}
		}

		if !changed {
			reconciled = true
			break
		}
	}
	if !reconciled {
		week := p.Week.Kind() != KindUnset
		dow := p.DayOfWeek.Kind() != KindUnset
		doy := p.DayOfYear.Kind() != KindUnset
		if week || dow || doy {
			curWeek := calendarops.WeekOfYear(y, mo, d)
			curDow := calendarops.DayOfWeek(y, mo, d)
			curDoy := calendarops.DayOfYear(y, mo, d)
			satisfied := p.Week.Match(curWeek, intp(calendarops.WeeksInYear(y))) &&
				p.DayOfWeek.Match(curDow, intp(7)) &&
				p.DayOfYear.Match(curDoy, intp(calendarops.DaysInYear(y)))
			if !satisfied {
				return time.Time{}, apperrors.Unreconcilable(
					"time pattern did not reconcile week/day-of-week/day-of-year within %d iterations",
					maxReconcileIterations)
			}
		}
	}

	return time.Date(y, time.Month(mo), d, hh, mi, ss, ns, loc), nil
}

// FromInstant builds a fully-Exact TimePattern from a concrete instant.
// includeMillis and includeNanos control whether the millisecond and
// nanosecond slots are populated or left Unset.
func FromInstant(t time.Time, includeMillis, includeNanos bool) TimePattern {
	y, mo, d := t.Date()
	tp := New()
	tp.Year = Exact(y)
	tp.Month = Exact(int(mo))
	tp.Day = Exact(d)
	tp.Week = Exact(calendarops.WeekOfYear(y, int(mo), d))
	tp.DayOfWeek = Exact(calendarops.DayOfWeek(y, int(mo), d))
	tp.DayOfYear = Exact(calendarops.DayOfYear(y, int(mo), d))
	tp.Hour = Exact(t.Hour())
	tp.Minute = Exact(t.Minute())
	tp.Second = Exact(t.Second())
	if includeMillis {
		tp.Millisecond = Exact(t.Nanosecond() / 1_000_000)
	}
	if includeNanos {
		tp.Nanosecond = Exact(t.Nanosecond())
	}
	tp.Location = t.Location()
	return tp
}

// ClearTime returns a copy with the 5 time slots (hour..nanosecond) reset
// to Unset.
func (p TimePattern) ClearTime() TimePattern {
	cp := p
	u := Unset()
	cp.Hour, cp.Minute, cp.Second, cp.Millisecond, cp.Nanosecond = u, u, u, u, u
	return cp
}

// ClearDate returns a copy with the 6 date slots (year..day-of-year) reset
// to Unset.
func (p TimePattern) ClearDate() TimePattern {
	cp := p
	u := Unset()
	cp.Year, cp.Month, cp.Day, cp.Week, cp.DayOfWeek, cp.DayOfYear = u, u, u, u, u, u
	return cp
}

// Expand returns the cartesian product of every slot's Expand sequence, in
// deterministic order: year outermost, nanosecond innermost. Unset and
// Predicate slots are preserved as-is (they contribute a single "any"
// element to the product, not a real axis).
func (p TimePattern) Expand() []TimePattern {
	axes := [][]FieldPattern{
		p.Year.Expand(), p.Month.Expand(), p.Day.Expand(),
		p.Week.Expand(), p.DayOfWeek.Expand(), p.DayOfYear.Expand(),
		p.Hour.Expand(), p.Minute.Expand(), p.Second.Expand(),
		p.Millisecond.Expand(), p.Nanosecond.Expand(),
	}
	results := []TimePattern{New()}
	results[0].Location = p.Location
	for axis, values := range axes {
		next := make([]TimePattern, 0, len(results)*len(values))
		for _, base := range results {
			for _, v := range values {
				cp := base
				switch axis {
				case 0:
					cp.Year = v
				case 1:
					cp.Month = v
				case 2:
					cp.Day = v
				case 3:
					cp.Week = v
				case 4:
					cp.DayOfWeek = v
				case 5:
					cp.DayOfYear = v
				case 6:
					cp.Hour = v
				case 7:
					cp.Minute = v
				case 8:
					cp.Second = v
				case 9:
					cp.Millisecond = v
				case 10:
					cp.Nanosecond = v
				}
				next = append(next, cp)
			}
		}
		results = next
	}
	return results
}
