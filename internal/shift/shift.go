// Package shift implements the two bounded deterministic search
// procedures used to reschedule a due-but-omitted occurrence, and to test
// whether some earlier occurrence shifts forward into a queried instant.
package shift

import "time"

// Search is a deterministic bounded search parameterized by a shift span
// and the same limits a TaskPattern carries: an optional maximum total
// displacement and a maximum number of shift steps.
type Search struct {
	Shift     time.Duration
	MaxShift  *time.Duration
	MaxShifts int
}

// ForwardShift starts at base and repeatedly advances by Shift until
// stopPredicate(current) is false, returning the delta from base to the
// first instant at which that happens. It gives up (found=false) if the
// shift count exceeds MaxShifts, if the cumulative displacement exceeds
// MaxShift (when set), or if Shift is zero or negative.
func (s Search) ForwardShift(base time.Time, stopPredicate func(time.Time) bool) (delta time.Duration, found bool) {
	if s.Shift <= 0 {
		return 0, false
	}
	current := base
	shiftsTaken := 0
	for {
		current = current.Add(s.Shift)
		shiftsTaken++
		if shiftsTaken > s.MaxShifts {
			return 0, false
		}
		if s.MaxShift != nil {
			if absDuration(current.Sub(base)) > *s.MaxShift {
				return 0, false
			}
		}
		if !stopPredicate(current) {
			return current.Sub(base), true
		}
	}
}

// IsReachableFromBase walks candidate base instants target-k*Shift for
// k=1,2,... up to MaxShifts, asking resolver at each one whether it
// produces a forward-shift delta; it returns true the first time
// base+delta equals target exactly. The search stops once the window
// measured against target exceeds MaxShift (when set).
func (s Search) IsReachableFromBase(target time.Time, resolver func(base time.Time) (delta time.Duration, ok bool)) bool {
	if s.Shift <= 0 {
		return false
	}
	for k := 1; k <= s.MaxShifts; k++ {
		base := target.Add(-time.Duration(k) * s.Shift)
		if s.MaxShift != nil {
			if absDuration(target.Sub(base)) > *s.MaxShift {
				return false
			}
		}
		delta, ok := resolver(base)
		if ok && base.Add(delta).Equal(target) {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
