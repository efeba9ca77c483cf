package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tm
}

func TestTimePatternNegativeDayWrap(t *testing.T) {
	// month=5, day=-2
	p := New()
	p.Month = Exact(5)
	p.Day = Exact(-2)

	require.True(t, p.Matches(mustParse(t, "2018-05-30T00:00:00Z")))
	require.False(t, p.Matches(mustParse(t, "2018-05-31T00:00:00Z")))
}

func TestTimePatternSteppedDayRange(t *testing.T) {
	// month=3, day=(10..20)/2
	p := New()
	p.Month = Exact(3)
	p.Day = Stepped(10, 20, 2)

	require.True(t, p.Matches(mustParse(t, "2017-03-16T00:00:00Z")))
	require.False(t, p.Matches(mustParse(t, "2017-03-15T00:00:00Z")))
}

func TestTimePatternFromInstantMatchesItself(t *testing.T) {
	instants := []string{
		"2018-05-30T12:34:56Z",
		"2020-02-29T00:00:00Z",
		"1999-12-31T23:59:59Z",
	}
	for _, s := range instants {
		tm := mustParse(t, s)
		p := FromInstant(tm, true, true)
		require.True(t, p.Matches(tm), "FromInstant(%s).Matches(%s)", s, s)
	}
}

func TestTimePatternMaterializeDirectFields(t *testing.T) {
	p := New()
	p.Month = Exact(6)
	p.Day = Exact(15)
	p.Hour = Exact(9)

	hint := mustParse(t, "2020-01-01T00:00:00Z")
	got, err := p.Materialize(hint)
	require.NoError(t, err)
	require.Equal(t, 2020, got.Year())
	require.Equal(t, time.June, got.Month())
	require.Equal(t, 15, got.Day())
	require.Equal(t, 9, got.Hour())
}

func TestTimePatternMaterializeReconcilesDayOfWeek(t *testing.T) {
	// Every Monday (day_of_week=1), hinted from a Wednesday.
	p := New()
	p.DayOfWeek = Exact(1)

	hint := mustParse(t, "2024-01-03T00:00:00Z") // a Wednesday
	got, err := p.Materialize(hint)
	require.NoError(t, err)
	require.Equal(t, time.Monday, got.Weekday())
}

func TestTimePatternExpandCartesianOrder(t *testing.T) {
	p := New()
	p.Month = List(1, 2)
	p.Day = List(10, 20)

	expanded := p.Expand()
	require.Len(t, expanded, 4)
	require.Equal(t, 1, expanded[0].Month.exact)
	require.Equal(t, 10, expanded[0].Day.exact)
	require.Equal(t, 1, expanded[1].Month.exact)
	require.Equal(t, 20, expanded[1].Day.exact)
	require.Equal(t, 2, expanded[2].Month.exact)
	require.Equal(t, 10, expanded[2].Day.exact)
}

func TestTimePatternClearTimeAndDate(t *testing.T) {
	tm := mustParse(t, "2020-06-15T10:20:30Z")
	p := FromInstant(tm, true, true)

	cleared := p.ClearTime()
	require.Equal(t, KindUnset, cleared.Hour.Kind())
	require.Equal(t, KindExact, cleared.Year.Kind())

	clearedDate := p.ClearDate()
	require.Equal(t, KindUnset, clearedDate.Year.Kind())
	require.Equal(t, KindExact, clearedDate.Hour.Kind())
}
