package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crystallabs/virtualdate/internal/scheduler"
	"github.com/crystallabs/virtualdate/internal/task"
)

func TestExportProducesVEventPerInstance(t *testing.T) {
	tp := task.New("standup")
	tp.SetFlags("meeting", "daily")

	instances := []*scheduler.ScheduledInstance{
		{
			Task:   tp,
			Start:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			Finish: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	out := Export(instances, "Team Schedule")
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "END:VCALENDAR")
	require.Contains(t, out, "BEGIN:VEVENT")
	require.Contains(t, out, "SUMMARY:standup")
	require.Contains(t, out, "DTSTART:20240601T090000Z")
	require.Contains(t, out, "DTEND:20240601T093000Z")
	require.Contains(t, out, "CATEGORIES:")
	require.Contains(t, out, "X-WR-CALNAME:Team Schedule")
}

func TestExportEmptyInstances(t *testing.T) {
	out := Export(nil, "")
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.NotContains(t, out, "BEGIN:VEVENT")
}

func TestEscapeTextHandlesSpecialChars(t *testing.T) {
	require.Equal(t, `a\,b\;c\\d`, escapeText("a,b;c\\d"))
	require.Equal(t, `line1\nline2`, escapeText("line1\nline2"))
}

func TestDescriptionIncludesFlagsLine(t *testing.T) {
	tp := task.New("with-flags")
	tp.SetFlags("urgent")
	inst := &scheduler.ScheduledInstance{Task: tp}
	require.Contains(t, description(inst), "Flags: urgent")
}
