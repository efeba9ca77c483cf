package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crystallabs/virtualdate/internal/pattern"
	"github.com/crystallabs/virtualdate/internal/task"
)

func dueAt(hour, minute int) pattern.TimePattern {
	p := pattern.New()
	p.Hour = pattern.Exact(hour)
	p.Minute = pattern.Exact(minute)
	p.Second = pattern.Exact(0)
	return p
}

func TestSchedulerDependencyPlusFixed(t *testing.T) {
	// Seed scenario 5.
	a := task.New("A")
	a.Fixed = true
	a.Duration = 2 * time.Hour
	a.Due = []pattern.TimePattern{dueAt(9, 0)}

	b := task.New("B")
	b.Duration = time.Hour
	b.Due = []pattern.TimePattern{dueAt(9, 0)}
	b.DependsOn = []*task.TaskPattern{a}

	s := New([]*task.TaskPattern{a, b}, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	instances, err := s.Build(from, to)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	var bInst *ScheduledInstance
	for _, inst := range instances {
		if inst.Task == b {
			bInst = inst
		}
	}
	require.NotNil(t, bInst)
	require.False(t, bInst.Start.Before(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)))
}

func TestSchedulerStagger(t *testing.T) {
	// Seed scenario 6.
	tp := task.New("staggered")
	tp.Due = []pattern.TimePattern{dueAt(10, 0)}
	tp.Parallel = 3
	stagger := 30 * time.Minute
	tp.Stagger = &stagger
	tp.Duration = time.Hour

	s := New([]*task.TaskPattern{tp}, nil)
	from := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	instances, err := s.Build(from, to)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	require.Equal(t, time.Date(2023, 5, 10, 10, 0, 0, 0, time.UTC), instances[0].Start)
	require.Equal(t, time.Date(2023, 5, 10, 10, 30, 0, 0, time.UTC), instances[1].Start)
	require.Equal(t, time.Date(2023, 5, 10, 11, 0, 0, 0, time.UTC), instances[2].Start)
}

func TestSchedulerParallelismCap(t *testing.T) {
	// Seed scenario 7.
	mk := func(id string) *task.TaskPattern {
		tp := task.New(id)
		tp.Due = []pattern.TimePattern{dueAt(10, 0)}
		tp.Duration = time.Hour
		tp.Parallel = 2
		tp.SetFlags("meeting")
		return tp
	}
	tasks := []*task.TaskPattern{mk("m1"), mk("m2"), mk("m3")}

	s := New(tasks, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	instances, err := s.Build(from, to)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	at10 := 0
	shiftedPastEleven := 0
	for _, inst := range instances {
		if inst.Start.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
			at10++
		}
		if inst.Start.After(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)) || inst.Start.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)) {
			shiftedPastEleven++
		}
	}
	require.Equal(t, 2, at10)
	require.Equal(t, 1, shiftedPastEleven)
}

func TestSchedulerDeadlineRejectsPlacement(t *testing.T) {
	// Seed scenario 8.
	tp := task.New("deadline")
	tp.Due = []pattern.TimePattern{dueAt(9, 0)}
	tp.Duration = 2 * time.Hour
	deadline := task.AtInstant(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	tp.Deadline = &deadline

	s := New([]*task.TaskPattern{tp}, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	instances, err := s.Build(from, to)
	require.NoError(t, err)
	require.Empty(t, instances)
}

func TestSchedulerDeterminism(t *testing.T) {
	mk := func(id string) *task.TaskPattern {
		tp := task.New(id)
		tp.Due = []pattern.TimePattern{dueAt(10, 0)}
		tp.Duration = time.Hour
		tp.SetFlags("room")
		tp.Parallel = 1
		return tp
	}
	tasks := func() []*task.TaskPattern { return []*task.TaskPattern{mk("x"), mk("y"), mk("z")} }

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	first, err := New(tasks(), nil).Build(from, to)
	require.NoError(t, err)
	second, err := New(tasks(), nil).Build(from, to)
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		require.Equal(t, first[i].Start, second[i].Start)
		require.Equal(t, first[i].Finish, second[i].Finish)
		require.Equal(t, first[i].Task.ID, second[i].Task.ID)
	}
}

func TestSchedulerCycleDetected(t *testing.T) {
	a := task.New("A")
	b := task.New("B")
	a.DependsOn = []*task.TaskPattern{b}
	b.DependsOn = []*task.TaskPattern{a}

	s := New([]*task.TaskPattern{a, b}, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Build(from, from.AddDate(0, 0, 1))
	require.Error(t, err)
}

func TestSchedulerHalfOpenParallelism(t *testing.T) {
	mk := func(id string, hour int) *task.TaskPattern {
		tp := task.New(id)
		tp.Due = []pattern.TimePattern{dueAt(hour, 0)}
		tp.Duration = time.Hour
		tp.Parallel = 1
		tp.SetFlags("room")
		return tp
	}
	// Back-to-back bookings should NOT conflict under half-open semantics.
	a := mk("a", 9)
	b := mk("b", 10)

	s := New([]*task.TaskPattern{a, b}, nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	instances, err := s.Build(from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), instances[0].Start)
	require.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), instances[1].Start)
}
