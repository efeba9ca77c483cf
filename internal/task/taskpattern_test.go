package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crystallabs/virtualdate/internal/pattern"
)

func marchFifteenth() pattern.TimePattern {
	p := pattern.New()
	p.Month = pattern.Exact(3)
	p.Day = pattern.Exact(15)
	return p
}

func TestTaskPatternNoDueAlwaysOn(t *testing.T) {
	tp := New("no-due")
	res, err := tp.StrictOn(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StrictOnTrue, res.Kind)
}

func TestTaskPatternNoOmitNeverDuration(t *testing.T) {
	tp := New("no-omit")
	tp.Due = []pattern.TimePattern{marchFifteenth()}
	res, err := tp.StrictOn(time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StrictOnTrue, res.Kind)
}

func TestTaskPatternOmitWithShiftDuration(t *testing.T) {
	// Seed scenario 3: due=omit=March 15, shift=1 day.
	tp := New("shift-scenario")
	tp.Due = []pattern.TimePattern{marchFifteenth()}
	tp.Omit = []pattern.TimePattern{marchFifteenth()}
	day := 24 * time.Hour
	tp.Shift = Override{Kind: OverrideDuration, Duration: day}

	t15 := time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC)
	res, err := tp.StrictOn(t15)
	require.NoError(t, err)
	require.Equal(t, StrictOnDuration, res.Kind)
	require.Equal(t, day, res.Duration)

	t16 := time.Date(2017, 3, 16, 0, 0, 0, 0, time.UTC)
	on, err := tp.On(t16)
	require.NoError(t, err)
	require.True(t, on)
}

func TestTaskPatternMaxShiftRejection(t *testing.T) {
	// Seed scenario 4: omit covers 15..16, shift 1 day, max_shift 1 day.
	tp := New("max-shift-scenario")
	due := pattern.New()
	due.Year, due.Month, due.Day = pattern.Exact(2017), pattern.Exact(3), pattern.Exact(15)
	tp.Due = []pattern.TimePattern{due}

	omit := pattern.New()
	omit.Year, omit.Month = pattern.Exact(2017), pattern.Exact(3)
	omit.Day = pattern.Range(15, 16, true)
	tp.Omit = []pattern.TimePattern{omit}

	day := 24 * time.Hour
	tp.Shift = Override{Kind: OverrideDuration, Duration: day}
	tp.MaxShift = &day

	on, err := tp.On(time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, on)
}

func TestTaskPatternDualRelation(t *testing.T) {
	tp := New("dual-relation")
	tp.Due = []pattern.TimePattern{marchFifteenth()}
	tp.Omit = []pattern.TimePattern{marchFifteenth()}
	tp.Shift = Override{Kind: OverrideDuration, Duration: 24 * time.Hour}

	base := time.Date(2017, 3, 15, 0, 0, 0, 0, time.UTC)
	res, err := tp.StrictOn(base)
	require.NoError(t, err)
	require.Equal(t, StrictOnDuration, res.Kind)

	on, err := tp.On(base.Add(res.Duration))
	require.NoError(t, err)
	require.True(t, on)
}

func TestTaskPatternBeginEndConcrete(t *testing.T) {
	tp := New("begin-end")
	begin := AtInstant(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	end := AtInstant(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	tp.Begin = &begin
	tp.End = &end

	before, err := tp.StrictOn(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StrictOnNone, before.Kind)

	within, err := tp.StrictOn(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StrictOnTrue, within.Kind)

	after, err := tp.StrictOn(time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StrictOnNone, after.Kind)
}

func TestTaskPatternOnOverrideDuration(t *testing.T) {
	tp := New("on-override-duration")
	d := 2 * time.Hour
	tp.OnOverride = Override{Kind: OverrideDuration, Duration: d}

	res, err := tp.StrictOn(time.Now())
	require.NoError(t, err)
	require.Equal(t, StrictOnDuration, res.Kind)
	require.Equal(t, d, res.Duration)

	resolved, err := tp.Resolve(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, ResolveInstant, resolved.Kind)
	require.Equal(t, time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), resolved.Instant)
}

func TestTaskPatternValidate(t *testing.T) {
	tp := New("invalid")
	tp.Parallel = 0
	require.Error(t, tp.Validate())

	tp2 := New("invalid-duration")
	tp2.Duration = -time.Second
	require.Error(t, tp2.Validate())

	tp3 := New("invalid-stagger")
	zero := time.Duration(0)
	tp3.Stagger = &zero
	require.Error(t, tp3.Validate())

	tp4 := New("valid")
	require.NoError(t, tp4.Validate())
}
