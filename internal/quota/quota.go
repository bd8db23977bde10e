// Package quota models the per-user daily AI-call allowance. There is no
// background reset job: the window rolls over lazily whenever an attempt
// arrives on a later calendar day.
package quota

import "time"

// Quota is the stored counter state for one user.
type Quota struct {
	Count       int
	WindowStart time.Time
}

// CheckAndAdvance applies one call attempt at the given instant and
// returns whether it is allowed plus the quota state after the attempt.
// The caller persists the returned state; the input is never mutated.
func CheckAndAdvance(q Quota, now time.Time, limit int) (bool, Quota) {
	if q.WindowStart.IsZero() || dayOf(q.WindowStart).Before(dayOf(now)) {
		q = Quota{Count: 0, WindowStart: now}
	}
	if q.Count >= limit {
		return false, q
	}
	q.Count++
	return true, q
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
