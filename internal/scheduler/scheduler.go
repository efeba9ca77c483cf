// Package scheduler builds a deterministic list of ScheduledInstances for
// a set of TaskPatterns within a [from, to) window: topological
// dependency ordering, candidate generation, conflict resolution, and
// parallelism enforcement.
package scheduler

import (
	"log"
	"sort"
	"time"

	"github.com/crystallabs/virtualdate/internal/apperrors"
	"github.com/crystallabs/virtualdate/internal/task"
)

// maxEarliestStartSteps bounds earliestStartTime's minute-resolution scan.
const maxEarliestStartSteps = 10000

// defaultFlag is the synthetic flag name used for parallelism accounting
// when a task carries no flags of its own.
const defaultFlag = "\x00default"

// Scheduler builds schedules for a fixed set of tasks. It is purely
// synchronous: Build owns all of its working state and may safely be
// called repeatedly (even concurrently) so long as the task list itself
// isn't mutated while a Build is in flight.
type Scheduler struct {
	Tasks  []*task.TaskPattern
	Logger *log.Logger
}

// New constructs a Scheduler over tasks. A nil logger defaults to
// log.Default(), matching the teacher's job-generator construction style.
func New(tasks []*task.TaskPattern, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{Tasks: tasks, Logger: logger}
}

// Build produces the sorted list of ScheduledInstances for the window
// [from, to).
func (s *Scheduler) Build(from, to time.Time) ([]*ScheduledInstance, error) {
	order, err := s.topoOrder()
	if err != nil {
		return nil, err
	}

	var placed []*ScheduledInstance
	placedByTask := make(map[string][]*ScheduledInstance)

	for _, t := range order {
		if err := t.Validate(); err != nil {
			return nil, err
		}

		depFloor, depFloorSet, depsSatisfied := s.dependencyFloor(t, placedByTask)
		if len(t.DependsOn) > 0 && !depsSatisfied {
			if s.hasDependents(t, order) {
				return nil, apperrors.UnsatisfiableDependency("task %q: one or more dependencies were not placed", t.ID)
			}
			continue
		}

		earliest, found, err := s.earliestStartTime(t, from, to)
		if err != nil {
			return nil, err
		}
		if !found {
			if s.hasDependents(t, order) {
				return nil, apperrors.UnsatisfiableDependency("task %q: no due occurrence within the window", t.ID)
			}
			continue
		}

		candidates, err := s.candidatesFor(t, earliest, to)
		if err != nil {
			return nil, err
		}

		placedAny := false
		for _, cand := range candidates {
			start := cand
			if depFloorSet && depFloor.After(start) {
				start = depFloor
			}
			inst, ok, err := s.scheduleCandidate(t, start, placed, to)
			if err != nil {
				return nil, err
			}
			if ok {
				placed = append(placed, inst)
				placedByTask[t.ID] = append(placedByTask[t.ID], inst)
				placedAny = true
			}
		}
		if !placedAny && s.hasDependents(t, order) {
			return nil, apperrors.UnsatisfiableDependency("task %q: no candidate could be placed", t.ID)
		}
	}

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Start.Before(placed[j].Start)
	})
	return placed, nil
}

// dependencyFloor reports the latest finish time across task's already
// placed dependencies, and whether every dependency has at least one
// placement.
func (s *Scheduler) dependencyFloor(t *task.TaskPattern, placedByTask map[string][]*ScheduledInstance) (floor time.Time, floorSet bool, satisfied bool) {
	satisfied = true
	for _, dep := range t.DependsOn {
		insts := placedByTask[dep.ID]
		if len(insts) == 0 {
			satisfied = false
			continue
		}
		for _, inst := range insts {
			if !floorSet || inst.Finish.After(floor) {
				floor = inst.Finish
				floorSet = true
			}
		}
	}
	return floor, floorSet, satisfied
}

// hasDependents reports whether any task in the set depends on t.
func (s *Scheduler) hasDependents(t *task.TaskPattern, tasks []*task.TaskPattern) bool {
	for _, other := range tasks {
		for _, dep := range other.DependsOn {
			if dep == t || dep.ID == t.ID {
				return true
			}
		}
	}
	return false
}

// topoOrder computes a topological order over the dependency graph using
// Kahn's algorithm with the deterministic tie-break key
// (fixed desc, priority desc, id asc). Cycle detection is folded into the
// same pass: if the emitted order doesn't cover every task, a cycle
// exists. This intentionally avoids a recursive depth-first traversal so
// stack usage stays bounded regardless of task-set size.
func (s *Scheduler) topoOrder() ([]*task.TaskPattern, error) {
	indegree := make(map[string]int, len(s.Tasks))
	dependents := make(map[string][]*task.TaskPattern)
	for _, t := range s.Tasks {
		indegree[t.ID] = len(t.DependsOn)
	}
	for _, t := range s.Tasks {
		for _, dep := range t.DependsOn {
			dependents[dep.ID] = append(dependents[dep.ID], t)
		}
	}

	emitted := make(map[string]bool, len(s.Tasks))
	order := make([]*task.TaskPattern, 0, len(s.Tasks))

	for len(order) < len(s.Tasks) {
		var ready []*task.TaskPattern
		for _, t := range s.Tasks {
			if !emitted[t.ID] && indegree[t.ID] == 0 {
				ready = append(ready, t)
			}
		}
		if len(ready) == 0 {
			break
		}
		sort.SliceStable(ready, func(i, j int) bool {
			a, b := ready[i], ready[j]
			if a.Fixed != b.Fixed {
				return a.Fixed
			}
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			return a.ID < b.ID
		})
		next := ready[0]
		order = append(order, next)
		emitted[next.ID] = true
		for _, dependent := range dependents[next.ID] {
			indegree[dependent.ID]--
		}
	}

	if len(order) != len(s.Tasks) {
		return nil, apperrors.Cycle("dependency graph contains a cycle")
	}
	return order, nil
}

// earliestStartTime scans forward from `from` at minute resolution,
// honoring StrictOn, up to maxEarliestStartSteps iterations.
func (s *Scheduler) earliestStartTime(t *task.TaskPattern, from, to time.Time) (time.Time, bool, error) {
	current := from
	for i := 0; i < maxEarliestStartSteps; i++ {
		if !current.Before(to) {
			return time.Time{}, false, nil
		}
		res, err := t.StrictOn(current)
		if err != nil {
			return time.Time{}, false, err
		}
		switch res.Kind {
		case task.StrictOnDuration:
			current = current.Add(res.Duration)
		case task.StrictOnTrue:
			return current, true, nil
		default:
			current = current.Add(time.Minute)
		}
	}
	return time.Time{}, false, nil
}

// candidatesFor emits the stagger-expanded candidate start times for t, or
// a single candidate at earliest when staggering doesn't apply.
func (s *Scheduler) candidatesFor(t *task.TaskPattern, earliest, to time.Time) ([]time.Time, error) {
	if t.Stagger == nil {
		return []time.Time{earliest}, nil
	}
	if *t.Stagger <= 0 {
		return nil, apperrors.InvalidArgument("task %q: stagger must be > 0, got %s", t.ID, *t.Stagger)
	}
	if t.Parallel <= 1 {
		return []time.Time{earliest}, nil
	}

	candidates := make([]time.Time, 0, t.Parallel)
	for i := 0; i < t.Parallel; i++ {
		cand := earliest.Add(time.Duration(i) * *t.Stagger)
		if !cand.Before(to) {
			break
		}
		if !t.IsOmitted(cand) {
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

// scheduleCandidate attempts to place t at start against the instances
// already in placed, iteratively resolving conflicts per the spec's
// ordered rules, and returns the accepted instance.
func (s *Scheduler) scheduleCandidate(t *task.TaskPattern, start time.Time, placed []*ScheduledInstance, horizon time.Time) (*ScheduledInstance, bool, error) {
	var explanation task.Explanation

	working := make([]*ScheduledInstance, len(placed))
	copy(working, placed)

	for iterations := 0; iterations < len(placed)+maxEarliestStartSteps; iterations++ {
		finish := start.Add(t.Duration)
		if finish.After(horizon) {
			explanation.Append("rejected: placement extends past the scheduling horizon")
			return nil, false, nil
		}

		if t.Deadline != nil {
			deadline, err := t.Deadline.Resolve(start)
			if err != nil {
				return nil, false, err
			}
			if finish.After(deadline) {
				explanation.Append("rejected: placement would miss its deadline")
				return nil, false, nil
			}
		}

		if s.acceptableParallelism(t, start, finish, working) {
			explanation.Append("accepted")
			return &ScheduledInstance{Task: t, Start: start, Finish: finish, Explanation: explanation}, true, nil
		}

		conflict := s.findConflict(start, finish, working)
		if conflict == nil {
			// Parallelism rejected it but no single overlapping instance
			// explains why (shouldn't happen given acceptableParallelism's
			// definition, but fail closed rather than loop forever).
			explanation.Append("rejected: parallelism limit reached")
			return nil, false, nil
		}

		switch {
		case conflict.Task.Fixed && s.hasDependents(t, s.Tasks):
			explanation.Append("accepted over a fixed conflict: task has dependents obligated to this placement")
			return &ScheduledInstance{Task: t, Start: start, Finish: finish, Explanation: explanation}, true, nil
		case conflict.Task.Fixed && t.Fixed:
			explanation.Append("rejected: both this task and the conflicting placement are fixed")
			return nil, false, nil
		case conflict.Task.Fixed:
			explanation.Append("shifted past a fixed conflict")
			start = conflict.Finish
		case t.Fixed:
			explanation.Append("fixed task displaced a movable conflict")
			working = removeInstance(working, conflict)
		case t.Priority > conflict.Task.Priority:
			explanation.Append("higher priority displaced a movable conflict")
			working = removeInstance(working, conflict)
		case t.Priority < conflict.Task.Priority:
			explanation.Append("shifted past a higher-priority conflict")
			start = conflict.Finish
		default:
			shiftSpan := time.Minute
			if t.Shift.Kind == task.OverrideDuration && t.Shift.Duration > 0 {
				shiftSpan = t.Shift.Duration
			}
			explanation.Append("shifted forward by its shift span after an equal-priority conflict")
			start = start.Add(shiftSpan)
		}
	}

	explanation.Append("rejected: conflict resolution did not converge")
	return nil, false, nil
}

func removeInstance(list []*ScheduledInstance, target *ScheduledInstance) []*ScheduledInstance {
	out := make([]*ScheduledInstance, 0, len(list))
	for _, inst := range list {
		if inst != target {
			out = append(out, inst)
		}
	}
	return out
}

// findConflict returns the first placed instance overlapping
// [start, finish), regardless of flags.
func (s *Scheduler) findConflict(start, finish time.Time, placed []*ScheduledInstance) *ScheduledInstance {
	for _, inst := range placed {
		if overlapsHalfOpen(start, finish, inst.Start, inst.Finish) {
			return inst
		}
	}
	return nil
}

// acceptableParallelism reports whether, for every flag the candidate
// carries (or the synthetic default flag when it carries none), the
// number of already-placed instances sharing that flag and overlapping
// [start, finish) stays strictly below t.Parallel.
func (s *Scheduler) acceptableParallelism(t *task.TaskPattern, start, finish time.Time, placed []*ScheduledInstance) bool {
	flags := flagsOrDefault(t)
	for flag := range flags {
		count := 0
		for _, inst := range placed {
			if !hasFlag(inst.Task, flag) {
				continue
			}
			if overlapsHalfOpen(start, finish, inst.Start, inst.Finish) {
				count++
			}
		}
		if count >= t.Parallel {
			return false
		}
	}
	return true
}

func flagsOrDefault(t *task.TaskPattern) map[string]struct{} {
	if t.HasFlags() {
		return t.Flags
	}
	return map[string]struct{}{defaultFlag: {}}
}

func hasFlag(t *task.TaskPattern, flag string) bool {
	flags := flagsOrDefault(t)
	_, ok := flags[flag]
	return ok
}

// OnInSchedule reports whether some ScheduledInstance for t covers
// instant at, half-open, or coincides exactly when the instance has zero
// duration.
func OnInSchedule(placed []*ScheduledInstance, t *task.TaskPattern, at time.Time) bool {
	for _, inst := range placed {
		if inst.Task == t && inst.covers(at) {
			return true
		}
	}
	return false
}
