package store

import (
	"strings"
	"time"
)

// ─── Day bucketing ───────────────────────────────────────────────────────────
//
// The tracker's day does not start at midnight: with the default 05:30 offset
// a session that runs past midnight still lands on the evening's date. Every
// fact belongs to exactly one logical day.

// dateOf truncates to the calendar date, midnight local.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// combineDay returns the instant where the logical day `date` begins.
func combineDay(date time.Time, dayStart time.Duration) time.Time {
	return dateOf(date).Add(dayStart)
}

// effectiveEnd is the end used for bucketing and durations: open facts count
// up to now while fresh, but an open fact older than a day collapses to its
// own start so it cannot swallow the whole timeline.
func effectiveEnd(start time.Time, end *time.Time, now time.Time) time.Time {
	if end != nil {
		return *end
	}
	if now.After(start) && now.Sub(start) < 24*time.Hour {
		return now
	}
	return start
}

// bucketDate assigns the fact to its logical day. Pure: same inputs, same
// bucket. A fact spanning one boundary goes to the side holding the larger
// share of its duration (tie goes to the later date); a span across several
// boundaries stays on its start date.
func bucketDate(start time.Time, end *time.Time, now time.Time, dayStart time.Duration) time.Time {
	eff := effectiveEnd(start, end, now)

	startDate := dateOf(start.Add(-dayStart))
	endDate := dateOf(eff.Add(-dayStart))

	if startDate.Equal(endDate) {
		return startDate
	}
	if !startDate.AddDate(0, 0, 1).Equal(endDate) {
		return startDate
	}

	boundary := combineDay(endDate, dayStart)
	if boundary.Sub(start) > eff.Sub(boundary) {
		return startDate
	}
	return endDate
}

// ─── Search filter ───────────────────────────────────────────────────────────

// matchesSearch applies the query language of fact listings: comma-separated
// groups are alternatives, words inside a group must all hit. A word hits on
// the activity, category or a tag by full match, or anywhere inside the
// description.
func matchesSearch(f *Fact, terms string) bool {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return true
	}

	for _, group := range strings.Split(terms, ",") {
		words := strings.Fields(group)
		if len(words) == 0 {
			continue
		}
		all := true
		for _, w := range words {
			if !matchesWord(f, w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func matchesWord(f *Fact, w string) bool {
	if strings.EqualFold(f.Activity, w) || strings.EqualFold(f.Category, w) {
		return true
	}
	for _, tag := range f.Tags {
		if strings.EqualFold(tag, w) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(f.Description), strings.ToLower(w))
}
