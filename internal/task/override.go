package task

import "time"

// OverrideKind discriminates a null/bool/duration override field (the
// shape used by both TaskPattern.Shift and TaskPattern.On).
type OverrideKind int

const (
	OverrideNull OverrideKind = iota
	OverrideFalse
	OverrideTrue
	OverrideDuration
)

// Override is a null|bool|duration value.
type Override struct {
	Kind     OverrideKind
	Duration time.Duration
}
