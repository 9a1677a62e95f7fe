package analytics

import (
	"time"

	"github.com/robopoint/salesops-manager/internal/entity"
)

// PeriodWindow resolves a filter preset against a reference "now" into a
// half-open [From, To) reporting window plus the immediately preceding
// comparison window. For the custom preset the caller-supplied bounds are
// inclusive calendar days; they are normalized to the half-open form here.
//
// Previous-window rules per preset:
//
//	this_month  -> the prior calendar month
//	last_month  -> the month before that
//	ytd         -> the same day-of-year span of the prior year
//	custom      -> an immediately preceding window of identical duration
func PeriodWindow(preset entity.PeriodPreset, from, to, now time.Time) (cur, prev entity.TimeRange, err error) {
	loc := now.Location()
	switch preset {
	case entity.PeriodLastMonth:
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		firstOfLast := firstOfThis.AddDate(0, -1, 0)
		firstBeforeLast := firstOfThis.AddDate(0, -2, 0)
		cur = entity.TimeRange{From: firstOfLast, To: firstOfThis}
		prev = entity.TimeRange{From: firstBeforeLast, To: firstOfLast}
	case entity.PeriodYTD:
		jan1 := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		prevJan1 := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, loc)
		// The comparison window ends at the same day-of-year offset into the
		// prior year. AddDate would slide the calendar date across a leap
		// boundary (Feb 29 onwards in a leap year lands one day late).
		sameDay := prevJan1.AddDate(0, 0, now.YearDay()-1)
		clock := now.Sub(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc))
		cur = entity.TimeRange{From: jan1, To: now}
		prev = entity.TimeRange{From: prevJan1, To: sameDay.Add(clock)}
	case entity.PeriodCustom:
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		if f.After(t) || from.After(to) {
			return cur, prev, entity.ErrInvalidRange
		}
		d := t.Sub(f)
		cur = entity.TimeRange{From: f, To: t}
		prev = entity.TimeRange{From: f.Add(-d), To: f}
	default: // this_month
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		firstOfLast := firstOfThis.AddDate(0, -1, 0)
		cur = entity.TimeRange{From: firstOfThis, To: now}
		prev = entity.TimeRange{From: firstOfLast, To: firstOfThis}
	}
	if cur.From.After(cur.To) {
		return cur, prev, entity.ErrInvalidRange
	}
	return cur, prev, nil
}
