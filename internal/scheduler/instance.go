package scheduler

import (
	"time"

	"github.com/crystallabs/virtualdate/internal/task"
)

// ScheduledInstance is one concrete placement produced by Scheduler.Build:
// an owning task, its [Start, Finish) span, and the explanation trace
// recorded while it was placed. Once returned from Build, an instance is
// never mutated.
type ScheduledInstance struct {
	Task        *task.TaskPattern
	Start       time.Time
	Finish      time.Time
	Explanation task.Explanation
}

// overlapsHalfOpen reports whether [aStart,aEnd) and [bStart,bEnd)
// overlap under the half-open rule: a < d && c < b.
func overlapsHalfOpen(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// covers reports whether instant t falls within this instance's span,
// coinciding exactly when the instance has zero duration.
func (si *ScheduledInstance) covers(t time.Time) bool {
	if !si.Finish.After(si.Start) {
		return t.Equal(si.Start)
	}
	return !t.Before(si.Start) && t.Before(si.Finish)
}
