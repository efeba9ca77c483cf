package task

import (
	"time"

	"github.com/crystallabs/virtualdate/internal/pattern"
)

// Moment is either a concrete instant or a TimePattern, used uniformly for
// TaskPattern's begin, end, and deadline fields. The two forms behave
// differently by design (§9): a concrete instant participates as an
// interval bound, while a pattern is a recurrence constraint the queried
// instant must match, not a span it falls inside.
type Moment struct {
	isPattern bool
	instant   time.Time
	pattern   pattern.TimePattern
}

// AtInstant builds a concrete-instant Moment.
func AtInstant(t time.Time) Moment {
	return Moment{instant: t}
}

// FromPattern builds a pattern Moment.
func FromPattern(p pattern.TimePattern) Moment {
	return Moment{isPattern: true, pattern: p}
}

// IsPattern reports whether this Moment is a TimePattern rather than a
// concrete instant.
func (m Moment) IsPattern() bool { return m.isPattern }

// Pattern returns the underlying TimePattern; only meaningful when
// IsPattern is true.
func (m Moment) Pattern() pattern.TimePattern { return m.pattern }

// Instant returns the underlying concrete instant; only meaningful when
// IsPattern is false.
func (m Moment) Instant() time.Time { return m.instant }

// SatisfiesLowerBound reports whether t is acceptable as a begin
// constraint: for a concrete instant, t must be on or after it; for a
// pattern, t must match it.
func (m Moment) SatisfiesLowerBound(t time.Time) bool {
	if m.isPattern {
		return m.pattern.Matches(t)
	}
	return !t.Before(m.instant)
}

// SatisfiesUpperBound reports whether t is acceptable as an end
// constraint: for a concrete instant, t must be on or before it; for a
// pattern, t must match it.
func (m Moment) SatisfiesUpperBound(t time.Time) bool {
	if m.isPattern {
		return m.pattern.Matches(t)
	}
	return !t.After(m.instant)
}

// Resolve returns a concrete instant for this Moment: itself if concrete,
// or materialized against hint if it's a pattern. Used for deadline
// comparisons, which always need a single instant to compare against.
func (m Moment) Resolve(hint time.Time) (time.Time, error) {
	if m.isPattern {
		return m.pattern.Materialize(hint)
	}
	return m.instant, nil
}
