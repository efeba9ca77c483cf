// Package pattern implements the tagged-variant field matcher
// (FieldPattern) and the 11-slot recurring time pattern (TimePattern) built
// on top of it.
package pattern

import (
	"fmt"
	"sort"

	"github.com/crystallabs/virtualdate/internal/apperrors"
)

// Kind discriminates the inhabitant of a FieldPattern.
type Kind int

const (
	KindUnset Kind = iota
	KindAlways
	KindExact
	KindList
	KindRange
	KindStepped
	KindPredicate
)

// FieldPattern is the atomic value used in every TimePattern slot: a
// tagged variant over unset, a fixed boolean, a single (possibly negative)
// integer, a list of integers, an inclusive or exclusive range, a stepped
// range, or an opaque predicate. Once constructed a FieldPattern is never
// mutated.
type FieldPattern struct {
	kind Kind

	always bool

	exact int

	list []int

	lo, hi    int
	inclusive bool

	step int

	predicate func(int) bool
}

// Unset returns the FieldPattern that matches any value.
func Unset() FieldPattern { return FieldPattern{kind: KindUnset} }

// Always returns a FieldPattern that matches iff b is true, independent of
// the value being tested.
func Always(b bool) FieldPattern { return FieldPattern{kind: KindAlways, always: b} }

// Exact returns a FieldPattern matching only n (which may be negative; see
// Match for wrap semantics).
func Exact(n int) FieldPattern { return FieldPattern{kind: KindExact, exact: n} }

// List returns a FieldPattern matching any of the given integers.
func List(ns ...int) FieldPattern {
	cp := make([]int, len(ns))
	copy(cp, ns)
	return FieldPattern{kind: KindList, list: cp}
}

// Range returns a FieldPattern matching every value between lo and hi,
// inclusive of hi iff inclusive is true. lo must be <= hi prior to wrap.
func Range(lo, hi int, inclusive bool) FieldPattern {
	return FieldPattern{kind: KindRange, lo: lo, hi: hi, inclusive: inclusive}
}

// Stepped returns a FieldPattern matching lo, lo+step, lo+2*step, ... up to
// and including hi. step must be > 0.
func Stepped(lo, hi, step int) FieldPattern {
	return FieldPattern{kind: KindStepped, lo: lo, hi: hi, step: step}
}

// Predicate returns a FieldPattern matching iff fn returns true for the
// unwrapped value. Predicates are not serializable.
func Predicate(fn func(int) bool) FieldPattern {
	return FieldPattern{kind: KindPredicate, predicate: fn}
}

// Kind reports the variant this FieldPattern inhabits.
func (f FieldPattern) Kind() Kind { return f.kind }

// Step reports the stepped variant's step, or 0 for any other kind.
func (f FieldPattern) Step() int { return f.step }

// Bounds reports the lo/hi endpoints for Range and Stepped variants.
func (f FieldPattern) Bounds() (lo, hi int) { return f.lo, f.hi }

// wrap resolves a possibly-negative pattern value against an optional
// semantic maximum. Wrap is computed lazily at match time, per field, so a
// day-of-month or day-of-year wrap anchor that depends on the candidate
// instant is never baked into the pattern at construction.
func wrap(n int, max *int) int {
	if n < 0 && max != nil {
		return *max + n + 1
	}
	return n
}

// Match reports whether value satisfies the pattern, given the field's
// semantic maximum (nil when the field has no wrap-relevant bound, e.g.
// year).
func (f FieldPattern) Match(value int, max *int) bool {
	switch f.kind {
	case KindUnset:
		return true
	case KindAlways:
		return f.always
	case KindExact:
		return value == wrap(f.exact, max)
	case KindList:
		for _, n := range f.list {
			if value == wrap(n, max) {
				return true
			}
		}
		return false
	case KindRange:
		lo, hi := wrap(f.lo, max), wrap(f.hi, max)
		if f.inclusive {
			return value >= lo && value <= hi
		}
		return value >= lo && value < hi
	case KindStepped:
		lo, hi := wrap(f.lo, max), wrap(f.hi, max)
		if f.step <= 0 {
			return false
		}
		if value < lo || value > hi {
			return false
		}
		return (value-lo)%f.step == 0
	case KindPredicate:
		return f.predicate(value)
	default:
		return false
	}
}

// Validate checks construction-time invariants: a stepped pattern's step
// must be positive, and a range's lo must not exceed hi prior to wrap.
func (f FieldPattern) Validate() error {
	switch f.kind {
	case KindStepped:
		if f.step <= 0 {
			return apperrors.InvalidPattern("stepped field pattern requires step > 0, got %d", f.step)
		}
		if f.lo > f.hi {
			return apperrors.InvalidPattern("stepped field pattern requires lo <= hi, got %d..%d", f.lo, f.hi)
		}
	case KindRange:
		if f.lo > f.hi {
			return apperrors.InvalidPattern("range field pattern requires lo <= hi, got %d..%d", f.lo, f.hi)
		}
	}
	return nil
}

// Expand returns the deterministic, ascending enumeration of this
// pattern's Exact inhabitants. Unset, Always, and Predicate cannot be
// enumerated and expand to a single-element slice containing themselves.
// Wrap is intentionally NOT applied here: Expand preserves the pattern's
// raw (possibly negative) integer values, since wrap only has meaning
// relative to a concrete candidate and is resolved later at match time.
func (f FieldPattern) Expand() []FieldPattern {
	switch f.kind {
	case KindExact:
		return []FieldPattern{f}
	case KindList:
		sorted := make([]int, len(f.list))
		copy(sorted, f.list)
		sort.Ints(sorted)
		out := make([]FieldPattern, len(sorted))
		for i, n := range sorted {
			out[i] = Exact(n)
		}
		return out
	case KindRange:
		hi := f.hi
		if !f.inclusive {
			hi--
		}
		out := make([]FieldPattern, 0, hi-f.lo+1)
		for n := f.lo; n <= hi; n++ {
			out = append(out, Exact(n))
		}
		return out
	case KindStepped:
		out := make([]FieldPattern, 0)
		for n := f.lo; n <= f.hi; n += f.step {
			out = append(out, Exact(n))
		}
		return out
	default:
		return []FieldPattern{f}
	}
}

// Materialize resolves this pattern to a single concrete integer. If
// strict is false, the default is returned regardless of match. Otherwise:
// Unset and Always always yield the default; any other kind yields the
// default when it already matches, or the smallest matching value
// (evaluated after wrap) when it doesn't.
func (f FieldPattern) Materialize(defaultVal int, max *int, strict bool) (int, error) {
	if !strict {
		return defaultVal, nil
	}
	switch f.kind {
	case KindUnset, KindAlways:
		return defaultVal, nil
	}
	if f.Match(defaultVal, max) {
		return defaultVal, nil
	}
	v, ok := f.smallestMatch(max)
	if !ok {
		return 0, apperrors.Unreconcilable("field pattern has no matching value for default %d", defaultVal)
	}
	return v, nil
}

// smallestMatch finds the smallest value (after wrap) satisfying the
// pattern. For Predicate, the search is bounded by max when known, or a
// generous fallback domain otherwise.
func (f FieldPattern) smallestMatch(max *int) (int, bool) {
	switch f.kind {
	case KindExact:
		return wrap(f.exact, max), true
	case KindList:
		best := 0
		found := false
		for _, n := range f.list {
			v := wrap(n, max)
			if !found || v < best {
				best = v
				found = true
			}
		}
		return best, found
	case KindRange:
		lo, hi := wrap(f.lo, max), wrap(f.hi, max)
		if !f.inclusive {
			hi--
		}
		if lo > hi {
			return 0, false
		}
		return lo, true
	case KindStepped:
		lo, hi := wrap(f.lo, max), wrap(f.hi, max)
		if f.step <= 0 || lo > hi {
			return 0, false
		}
		return lo, true
	case KindPredicate:
		upper := 9999
		if max != nil {
			upper = *max
		}
		for n := 0; n <= upper; n++ {
			if f.predicate(n) {
				return n, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// String renders the pattern for diagnostic messages only.
func (f FieldPattern) String() string {
	switch f.kind {
	case KindUnset:
		return "unset"
	case KindAlways:
		return fmt.Sprintf("always(%v)", f.always)
	case KindExact:
		return fmt.Sprintf("%d", f.exact)
	case KindList:
		return fmt.Sprintf("list%v", f.list)
	case KindRange:
		sep := "..."
		if f.inclusive {
			sep = ".."
		}
		return fmt.Sprintf("%d%s%d", f.lo, sep, f.hi)
	case KindStepped:
		return fmt.Sprintf("%d..%d/%d", f.lo, f.hi, f.step)
	case KindPredicate:
		return "predicate"
	default:
		return "?"
	}
}
