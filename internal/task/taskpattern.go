// Package task implements TaskPattern, the user-facing scheduled item:
// its due/omit matching, shift policy, and begin/end/deadline gating.
package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/crystallabs/virtualdate/internal/apperrors"
	"github.com/crystallabs/virtualdate/internal/pattern"
	"github.com/crystallabs/virtualdate/internal/shift"
)

// DefaultMaxShifts is the default bound on shift search steps.
const DefaultMaxShifts = 1500

// TaskPattern is the user-facing scheduled item.
type TaskPattern struct {
	ID string

	Begin *Moment
	End   *Moment

	Due  []pattern.TimePattern
	Omit []pattern.TimePattern

	Shift     Override
	MaxShift  *time.Duration
	MaxShifts int

	OnOverride Override

	Duration time.Duration
	Flags    map[string]struct{}

	Parallel int
	Priority int
	Fixed    bool

	Stagger *time.Duration

	Deadline *Moment

	DependsOn    []*TaskPattern
	DependsOnIDs []string
}

// New constructs a TaskPattern with the spec's defaults: shift=false,
// on=null, max_shifts=1500, parallel=1, an empty flag set. If id is empty
// a uuid is generated — the loader always supplies an explicit id, per
// the schema table, so auto-generation only applies to tasks built
// directly through this constructor.
func New(id string) *TaskPattern {
	if id == "" {
		id = uuid.NewString()
	}
	return &TaskPattern{
		ID:         id,
		Shift:      Override{Kind: OverrideFalse},
		OnOverride: Override{Kind: OverrideNull},
		MaxShifts:  DefaultMaxShifts,
		Parallel:   1,
		Flags:      map[string]struct{}{},
	}
}

// Validate checks the task-local invariants that don't require the full
// scheduler set (parallel >= 1, duration >= 0, stagger > 0 when set).
// Dependency-graph invariants are checked by the scheduler, which has
// visibility into the whole task set.
func (tp *TaskPattern) Validate() error {
	if tp.Parallel < 1 {
		return apperrors.InvalidArgument("task %q: parallel must be >= 1, got %d", tp.ID, tp.Parallel)
	}
	if tp.Duration < 0 {
		return apperrors.InvalidArgument("task %q: duration must be >= 0", tp.ID)
	}
	if tp.Stagger != nil && *tp.Stagger <= 0 {
		return apperrors.InvalidArgument("task %q: stagger must be > 0 when set", tp.ID)
	}
	return nil
}

// HasFlags reports whether the task carries any flags.
func (tp *TaskPattern) HasFlags() bool { return len(tp.Flags) > 0 }

// SetFlags replaces the task's flag set.
func (tp *TaskPattern) SetFlags(names ...string) {
	tp.Flags = make(map[string]struct{}, len(names))
	for _, n := range names {
		tp.Flags[n] = struct{}{}
	}
}

// StrictOnKind discriminates the None|Bool|Duration result of StrictOn.
type StrictOnKind int

const (
	StrictOnNone StrictOnKind = iota
	StrictOnFalse
	StrictOnTrue
	StrictOnDuration
)

// StrictOnResult is the None|Bool|Duration value strict_on? returns.
type StrictOnResult struct {
	Kind     StrictOnKind
	Duration time.Duration
}

func noneResult() StrictOnResult     { return StrictOnResult{Kind: StrictOnNone} }
func falseResult() StrictOnResult    { return StrictOnResult{Kind: StrictOnFalse} }
func trueResult() StrictOnResult     { return StrictOnResult{Kind: StrictOnTrue} }
func durationResult(d time.Duration) StrictOnResult {
	return StrictOnResult{Kind: StrictOnDuration, Duration: d}
}

// matchesList implements the spec's due/omit matching rule: across the
// list, "any-date" is true if some pattern's date slots match, "any-time"
// is true if some pattern's time slots match (not necessarily the same
// pattern), and the list matches iff both aggregates are true. An empty
// list resolves to emptyDefault (true for due, false for omit) without
// inspecting t at all.
func matchesList(list []pattern.TimePattern, t time.Time, emptyDefault bool) bool {
	if len(list) == 0 {
		return emptyDefault
	}
	anyDate := false
	anyTime := false
	for _, p := range list {
		if p.MatchesDate(t) {
			anyDate = true
		}
		if p.MatchesTime(t) {
			anyTime = true
		}
	}
	return anyDate && anyTime
}

// IsOmitted reports whether t matches the task's omit list (false when the
// list is empty). Used by staggered candidate generation, which must skip
// only omitted slots rather than requiring a full due/strict-on match.
func (tp *TaskPattern) IsOmitted(t time.Time) bool {
	return matchesList(tp.Omit, t, false)
}

// StrictOn evaluates whether the task is strictly on at t. It takes no
// materialization hint: t is always an already concrete instant (the
// spec's "if t is a TimePattern, materialize it" step is folded into the
// caller resolving its query time up front, since every real caller in
// this implementation already queries with a concrete instant).
func (tp *TaskPattern) StrictOn(t time.Time) (StrictOnResult, error) {
	switch tp.OnOverride.Kind {
	case OverrideFalse:
		return falseResult(), nil
	case OverrideTrue:
		return trueResult(), nil
	case OverrideDuration:
		return durationResult(tp.OnOverride.Duration), nil
	}

	if tp.Begin != nil && !tp.Begin.SatisfiesLowerBound(t) {
		return noneResult(), nil
	}
	if tp.End != nil && !tp.End.SatisfiesUpperBound(t) {
		return noneResult(), nil
	}

	yes := matchesList(tp.Due, t, true)
	no := matchesList(tp.Omit, t, false)

	if !yes {
		return noneResult(), nil
	}
	if yes && !no {
		return trueResult(), nil
	}

	switch tp.Shift.Kind {
	case OverrideNull:
		return noneResult(), nil
	case OverrideFalse:
		return falseResult(), nil
	case OverrideTrue:
		return trueResult(), nil
	case OverrideDuration:
		search := shift.Search{Shift: tp.Shift.Duration, MaxShift: tp.MaxShift, MaxShifts: tp.MaxShifts}
		delta, found := search.ForwardShift(t, func(candidate time.Time) bool {
			return matchesList(tp.Omit, candidate, false)
		})
		if found {
			return durationResult(delta), nil
		}
		return falseResult(), nil
	}
	return noneResult(), nil
}

// On reports whether the task is on at t: either StrictOn(t) is True, or
// (when the shift policy is a nonzero duration) t is reachable by
// forward-shifting some earlier base instant that was strictly on with a
// matching duration.
func (tp *TaskPattern) On(t time.Time) (bool, error) {
	res, err := tp.StrictOn(t)
	if err != nil {
		return false, err
	}
	if res.Kind == StrictOnTrue {
		return true, nil
	}
	if tp.Shift.Kind == OverrideDuration && tp.Shift.Duration > 0 {
		search := shift.Search{Shift: tp.Shift.Duration, MaxShift: tp.MaxShift, MaxShifts: tp.MaxShifts}
		var resolveErr error
		reachable := search.IsReachableFromBase(t, func(base time.Time) (time.Duration, bool) {
			baseResult, err := tp.StrictOn(base)
			if err != nil {
				resolveErr = err
				return 0, false
			}
			if baseResult.Kind == StrictOnDuration {
				return baseResult.Duration, true
			}
			return 0, false
		})
		if resolveErr != nil {
			return false, resolveErr
		}
		return reachable, nil
	}
	return false, nil
}

// ResolveKind discriminates the Instant|True|None|False result of
// Resolve.
type ResolveKind int

const (
	ResolveNone ResolveKind = iota
	ResolveFalse
	ResolveTrue
	ResolveInstant
)

// ResolveResult is the Instant|True|None|False value Resolve returns.
type ResolveResult struct {
	Kind    ResolveKind
	Instant time.Time
}

// Resolve returns t+delta when StrictOn(t) yields a duration, and the raw
// StrictOn value otherwise.
func (tp *TaskPattern) Resolve(t time.Time) (ResolveResult, error) {
	res, err := tp.StrictOn(t)
	if err != nil {
		return ResolveResult{}, err
	}
	switch res.Kind {
	case StrictOnDuration:
		return ResolveResult{Kind: ResolveInstant, Instant: t.Add(res.Duration)}, nil
	case StrictOnTrue:
		return ResolveResult{Kind: ResolveTrue}, nil
	case StrictOnFalse:
		return ResolveResult{Kind: ResolveFalse}, nil
	default:
		return ResolveResult{Kind: ResolveNone}, nil
	}
}
