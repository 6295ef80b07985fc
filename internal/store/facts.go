package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkrastins/factlog/internal/parse"
)

// AddFactParams carries one candidate fact. Input is the free-text form;
// the structured fields, when set, take precedence over whatever the parser
// extracts from it. Temporary marks a throwaway activity that should not
// enter the catalog.
type AddFactParams struct {
	Input       string
	Activity    string
	Category    string
	Description string
	Tags        []string
	Start       *time.Time
	End         *time.Time
	Temporary   bool
}

// mergeInput is the single field-merge point: a structured, non-empty
// argument wins, else the parsed value, else the zero value.
func mergeInput(p AddFactParams, now time.Time) parse.Fields {
	f := parse.Parse(p.Input, now)
	if p.Activity != "" {
		f.Activity = p.Activity
	}
	if p.Category != "" {
		f.Category = p.Category
	}
	if p.Description != "" {
		f.Description = p.Description
	}
	if len(p.Tags) > 0 {
		f.Tags = p.Tags
	}
	if p.Start != nil {
		f.Start = p.Start
	}
	if p.End != nil {
		f.End = p.End
	}
	return f
}

// ─── Adding facts ────────────────────────────────────────────────────────────

// AddFact records a candidate fact, resolving catalog references, applying
// the continuity policy against the open fact and clearing any interval
// conflicts, all in one transaction. Returns the id of the fact now covering
// the candidate span. An empty activity name is a no-op returning id 0, not
// an error.
func (s *Store) AddFact(p AddFactParams) (int64, Change, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, Change{}, err
	}
	defer tx.Rollback()

	id, change, err := s.addFact(tx, p)
	if err != nil {
		return 0, Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return 0, Change{}, err
	}
	return id, change, nil
}

func (s *Store) addFact(q querier, p AddFactParams) (int64, Change, error) {
	now := toMinute(s.now())

	f := mergeInput(p, now)
	if strings.TrimSpace(f.Activity) == "" {
		return 0, Change{}, nil
	}

	start := now
	if f.Start != nil {
		start = toMinute(*f.Start)
	}
	// never record the future: roll a future start back to the same time
	// of day on the most recent past date
	for start.After(now) {
		start = start.AddDate(0, 0, -1)
	}

	var end *time.Time
	if f.End != nil {
		e := toMinute(*f.End)
		end = &e
	}

	// no category means a global activity lookup, not one scoped to Unsorted
	var categoryID int64
	if f.Category != "" {
		var err error
		categoryID, err = resolveCategory(q, f.Category)
		if err != nil {
			return 0, Change{}, err
		}
	}

	existing, err := activityByName(q, f.Activity, categoryID, !p.Temporary)
	if err != nil {
		return 0, Change{}, err
	}
	var activityID int64
	newActivity := existing == nil
	if newActivity {
		activityID, err = addActivity(q, f.Activity, categoryID, p.Temporary)
		if err != nil {
			return 0, Change{}, err
		}
	} else {
		activityID = existing.ID
	}

	tags, err := tagIDs(q, f.Tags)
	if err != nil {
		return 0, Change{}, err
	}
	tagNames := make([]string, len(tags))
	for i, t := range tags {
		tagNames[i] = t.Name
	}
	sort.Strings(tagNames)

	// continuity against the open fact, only when working on the current day
	if !start.After(now) && now.Sub(start) <= 24*time.Hour {
		id, done, glued, err := s.applyContinuity(q, activityID, tagNames, f.Description, start, now)
		if err != nil {
			return 0, Change{}, err
		}
		if done {
			// a glue rewrote the timeline; a pure re-add touched nothing
			if glued {
				return id, newChange(true, false, false), nil
			}
			return id, Change{}, nil
		}
	}

	if end == nil {
		end, err = squeezeIn(q, start)
	} else {
		err = solveOverlaps(q, start, *end)
	}
	if err != nil {
		return 0, Change{}, err
	}

	// degenerate span, suppress the insert
	if end != nil && !end.After(start) {
		return 0, newChange(true, newActivity, len(tags) > 0), nil
	}

	res, err := q.Exec(
		`INSERT INTO facts (activity_id, start_time, end_time, description) VALUES (?, ?, ?, ?)`,
		activityID, formatTime(start), nullableTime(end), nullableString(f.Description),
	)
	if err != nil {
		return 0, Change{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, Change{}, err
	}
	for _, t := range tags {
		if _, err := q.Exec(`INSERT INTO fact_tags (fact_id, tag_id) VALUES (?, ?)`, id, t.ID); err != nil {
			return 0, Change{}, err
		}
	}

	return id, newChange(true, newActivity, len(tags) > 0), nil
}

// applyContinuity inspects the open fact of the current logical day and
// decides whether the candidate even becomes a new fact:
//
//   - same activity, tags and description: the candidate is a re-add of what
//     is already running, return it untouched
//   - the open fact is description-less and barely a minute old: a rapid
//     correction, not a real task. Drop it, and if the fact before it ended
//     moments ago with the candidate's activity and tags, reopen that one
//     instead (three quick switches glue into one continuous fact)
//   - anything else: close the open fact at the candidate's start
//
// Returns (id, true, glued) when an existing fact absorbed the candidate;
// glued reports whether the absorption rewrote stored facts, as opposed to
// the pure re-add that touches nothing.
func (s *Store) applyContinuity(q querier, activityID int64, tagNames []string, description string, start, now time.Time) (int64, bool, bool, error) {
	dayStart := combineDay(dateOf(now.Add(-s.cfg.DayStart)), s.cfg.DayStart)

	prev, err := openFact(q)
	if err != nil {
		return 0, false, false, err
	}
	if prev == nil || prev.Start.Before(dayStart) || prev.Start.After(start) {
		return 0, false, false, nil
	}

	if prev.ActivityID == activityID &&
		prev.Description == description &&
		equalStrings(sortedTagNames(prev.Tags), tagNames) {
		return prev.ID, true, false, nil
	}

	if prev.Description == "" && start.Sub(prev.Start) <= time.Minute {
		if err := removeFact(q, prev.ID); err != nil {
			return 0, false, false, err
		}

		before, err := latestClosedFact(q, dayStart)
		if err != nil {
			return 0, false, false, err
		}
		if before != nil && before.ActivityID == activityID {
			gap := start.Sub(*before.End)
			if gap >= 0 && gap <= time.Minute && equalStrings(sortedTagNames(before.Tags), tagNames) {
				if _, err := q.Exec(`UPDATE facts SET end_time = NULL WHERE id = ?`, before.ID); err != nil {
					return 0, false, false, err
				}
				return before.ID, true, true, nil
			}
		}
		return 0, false, false, nil
	}

	// closing at the candidate's start would leave a zero-length fact;
	// drop the previous one instead, the way TouchFact treats sub-minute facts
	if start.Equal(prev.Start) {
		if err := removeFact(q, prev.ID); err != nil {
			return 0, false, false, err
		}
		return 0, false, false, nil
	}

	if _, err := q.Exec(`UPDATE facts SET end_time = ? WHERE id = ?`, formatTime(start), prev.ID); err != nil {
		return 0, false, false, err
	}
	return 0, false, false, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ─── Updating, removing, closing ─────────────────────────────────────────────

// UpdateFact replaces a fact: the old one is removed and the candidate
// inserted in its place, atomically, with full conflict resolution. The
// returned id is the new fact's, not the old one's.
func (s *Store) UpdateFact(id int64, p AddFactParams) (int64, Change, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, Change{}, err
	}
	defer tx.Rollback()

	if err := removeFact(tx, id); err != nil {
		return 0, Change{}, err
	}
	newID, _, err := s.addFact(tx, p)
	if err != nil {
		return 0, Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return 0, Change{}, err
	}
	return newID, newChange(true, false, false), nil
}

// RemoveFact deletes a fact and its tag links.
func (s *Store) RemoveFact(id int64) (Change, error) {
	f, err := s.GetFact(id)
	if err != nil {
		return Change{}, err
	}
	if f == nil {
		return Change{}, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback()

	if err := removeFact(tx, id); err != nil {
		return Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	return newChange(true, false, false), nil
}

func removeFact(q querier, id int64) error {
	if _, err := q.Exec(`DELETE FROM fact_tags WHERE fact_id = ?`, id); err != nil {
		return err
	}
	_, err := q.Exec(`DELETE FROM facts WHERE id = ?`, id)
	return err
}

// TouchFact closes an open fact at the given time, or now. A fact that would
// end up shorter than a minute is discarded entirely.
func (s *Store) TouchFact(id int64, end *time.Time) (Change, error) {
	f, err := s.GetFact(id)
	if err != nil {
		return Change{}, err
	}
	if f == nil {
		return Change{}, fmt.Errorf("factlog: fact %d not found", id)
	}
	if !f.Open() {
		return Change{}, nil
	}

	at := toMinute(s.now())
	if end != nil {
		at = toMinute(*end)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback()

	if at.Sub(f.Start) < time.Minute {
		if err := removeFact(tx, id); err != nil {
			return Change{}, err
		}
	} else {
		if _, err := tx.Exec(`UPDATE facts SET end_time = ? WHERE id = ?`, formatTime(at), id); err != nil {
			return Change{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	return newChange(true, false, false), nil
}

// StopTracking closes the open fact, if any.
func (s *Store) StopTracking(end *time.Time) (Change, error) {
	open, err := openFact(s.db)
	if err != nil {
		return Change{}, err
	}
	if open == nil {
		return Change{}, nil
	}
	return s.TouchFact(open.ID, end)
}

// ─── Reading facts ───────────────────────────────────────────────────────────

const factColumns = `
	SELECT f.id, f.activity_id, a.name, a.category_id, coalesce(c.name, ?),
	       f.start_time, f.end_time, f.description
	  FROM facts f
 LEFT JOIN activities a ON a.id = f.activity_id
 LEFT JOIN categories c ON a.category_id = c.id`

func scanFact(row interface{ Scan(...any) error }) (*Fact, error) {
	var (
		f        Fact
		rawStart string
		rawEnd   *string
		desc     *string
	)
	err := row.Scan(&f.ID, &f.ActivityID, &f.Activity, &f.CategoryID, &f.Category,
		&rawStart, &rawEnd, &desc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Start = parseStoredTime(rawStart)
	if rawEnd != nil {
		e := parseStoredTime(*rawEnd)
		f.End = &e
	}
	f.Description = derefString(desc)
	return &f, nil
}

func factTags(q querier, factID int64) ([]string, error) {
	rows, err := q.Query(`
		SELECT t.name
		  FROM fact_tags ft
		  JOIN tags t ON t.id = ft.tag_id
		 WHERE ft.fact_id = ?
	  ORDER BY lower(t.name)`, factID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// GetFact fetches one fact with its tags; nil when absent.
func (s *Store) GetFact(id int64) (*Fact, error) {
	return getFact(s.db, id)
}

func getFact(q querier, id int64) (*Fact, error) {
	f, err := scanFact(q.QueryRow(factColumns+` WHERE f.id = ?`, UnsortedName, id))
	if err != nil || f == nil {
		return f, err
	}
	if f.Tags, err = factTags(q, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

// openFact returns the currently tracked fact, nil when nothing is running.
func openFact(q querier) (*Fact, error) {
	f, err := scanFact(q.QueryRow(
		factColumns+` WHERE f.end_time IS NULL ORDER BY f.start_time DESC LIMIT 1`,
		UnsortedName,
	))
	if err != nil || f == nil {
		return f, err
	}
	if f.Tags, err = factTags(q, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

// latestClosedFact returns the most recent ended fact at or after dayStart.
func latestClosedFact(q querier, dayStart time.Time) (*Fact, error) {
	f, err := scanFact(q.QueryRow(
		factColumns+` WHERE f.end_time IS NOT NULL AND f.start_time >= ?
	  ORDER BY f.start_time DESC LIMIT 1`,
		UnsortedName, formatTime(dayStart),
	))
	if err != nil || f == nil {
		return f, err
	}
	if f.Tags, err = factTags(q, f.ID); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenFact exposes the currently tracked fact to front-ends.
func (s *Store) OpenFact() (*Fact, error) {
	return openFact(s.db)
}

// GetFacts lists facts bucketed into logical days within [date, endDate],
// ordered by start time, optionally filtered by search terms (comma for
// alternatives, spaces for conjunction). A zero endDate means a single day.
// Facts whose bucket falls outside the window are excluded even when their
// raw span touches it.
func (s *Store) GetFacts(date, endDate time.Time, search string) ([]Fact, error) {
	date = dateOf(date)
	if endDate.IsZero() {
		endDate = date
	}
	endDate = dateOf(endDate)

	from := combineDay(date, s.cfg.DayStart)
	to := combineDay(endDate, s.cfg.DayStart).AddDate(0, 0, 1)

	// one day of slack before the window: boundary reassignment can pull a
	// fact started the previous evening into the first queried day
	rows, err := s.db.Query(
		factColumns+` WHERE f.start_time >= ? AND f.start_time < ?
	  ORDER BY f.start_time, f.id`,
		UnsortedName, formatTime(from.AddDate(0, 0, -1)), formatTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := toMinute(s.now())
	var results []Fact
	for i := range facts {
		f := &facts[i]
		if f.Tags, err = factTags(s.db, f.ID); err != nil {
			return nil, err
		}
		f.Date = bucketDate(f.Start, f.End, now, s.cfg.DayStart)
		f.Delta = effectiveEnd(f.Start, f.End, now).Sub(f.Start)

		if f.Date.Before(date) || f.Date.After(endDate) {
			continue
		}
		if !matchesSearch(f, search) {
			continue
		}
		results = append(results, *f)
	}
	return results, nil
}

// GetTodaysFacts lists the current logical day.
func (s *Store) GetTodaysFacts() ([]Fact, error) {
	today := dateOf(s.now().Add(-s.cfg.DayStart))
	return s.GetFacts(today, today, "")
}

// Today returns the current logical date under the day-start offset.
func (s *Store) Today() time.Time {
	return dateOf(s.now().Add(-s.cfg.DayStart))
}
