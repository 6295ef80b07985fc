package store

import (
	"database/sql"
	"time"
)

// ─── Interval conflict resolution ────────────────────────────────────────────
//
// Two entry points keep the timeline overlap-free without ever destroying a
// recorded fact: squeezeIn infers an end time for an open candidate from its
// neighbors, solveOverlaps makes room for a closed candidate by truncating,
// shifting or splitting whatever it collides with.

// squeezeIn resolves a candidate that has a start but no end. If an existing
// fact contains the start, that fact is truncated there and the candidate
// stays open. If the nearest fact within the next 12 hours starts after the
// candidate, the candidate fills the gap up to it. Otherwise the candidate
// remains open indefinitely. Returns the inferred end, nil for open.
func squeezeIn(q querier, start time.Time) (*time.Time, error) {
	var (
		id       int64
		rawStart string
		rawEnd   *string
	)
	err := q.QueryRow(`
		SELECT id, start_time, end_time
		  FROM facts
		 WHERE (start_time <= ? AND (end_time > ? OR end_time IS NULL))
		    OR (start_time > ? AND start_time < ?)
	  ORDER BY start_time
		 LIMIT 1`,
		formatTime(start), formatTime(start),
		formatTime(start), formatTime(start.Add(12*time.Hour)),
	).Scan(&id, &rawStart, &rawEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	found := parseStoredTime(rawStart)
	if found.Before(start) || (rawEnd == nil && !found.After(start)) {
		// candidate lands inside this fact: cut it off at our start and
		// keep tracking
		if _, err := q.Exec(
			`UPDATE facts SET end_time = ? WHERE id = ?`,
			formatTime(start), id,
		); err != nil {
			return nil, err
		}
		return nil, nil
	}

	// a fact starts after us; fill the gap up to it
	return &found, nil
}

// solveOverlaps makes room for a closed candidate span. Every closed fact
// intersecting [start, end) gets exactly one treatment, judged against the
// original candidate span in ascending start order:
//
//   - strictly containing the candidate: truncated at start, with a new fact
//     cloned from its tail (same activity, description and tags) after end
//   - fully contained by the candidate: left alone, overlap and all; losing
//     recorded time is worse than a messy timeline
//   - overlapping only the start: its start shifted forward to end
//   - overlapping only the end: its end shifted back to start
func solveOverlaps(q querier, start, end time.Time) error {
	rows, err := q.Query(`
		SELECT id, start_time, end_time
		  FROM facts
		 WHERE end_time IS NOT NULL
		   AND start_time < ? AND end_time > ?
	  ORDER BY start_time`,
		formatTime(end), formatTime(start),
	)
	if err != nil {
		return err
	}

	type conflict struct {
		id         int64
		start, end time.Time
	}
	var conflicts []conflict
	for rows.Next() {
		var c conflict
		var rawStart, rawEnd string
		if err := rows.Scan(&c.id, &rawStart, &rawEnd); err != nil {
			rows.Close()
			return err
		}
		c.start = parseStoredTime(rawStart)
		c.end = parseStoredTime(rawEnd)
		conflicts = append(conflicts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range conflicts {
		// All comparisons are deliberately strict: a conflict sharing one
		// boundary with the candidate while extending past the other on the
		// same side (say, equal starts but a later end) matches no branch
		// and keeps its span, overlap included. Same reasoning as the
		// contained case: better a messy timeline than trimmed records.
		switch {
		case c.start.Before(start) && end.Before(c.end):
			if err := splitFact(q, c.id, start, end, c.end); err != nil {
				return err
			}

		case !c.start.Before(start) && !c.end.After(end):
			// fully contained: keep

		case c.start.After(start) && c.start.Before(end):
			if _, err := q.Exec(
				`UPDATE facts SET start_time = ? WHERE id = ?`,
				formatTime(end), c.id,
			); err != nil {
				return err
			}

		case c.end.After(start) && c.end.Before(end):
			if _, err := q.Exec(
				`UPDATE facts SET end_time = ? WHERE id = ?`,
				formatTime(start), c.id,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitFact truncates a containing fact at start and clones its remainder
// after end, tags included, so the history behind the inserted candidate
// survives with a fresh id.
func splitFact(q querier, id int64, start, end, oldEnd time.Time) error {
	if _, err := q.Exec(
		`UPDATE facts SET end_time = ? WHERE id = ?`,
		formatTime(start), id,
	); err != nil {
		return err
	}
	if !oldEnd.After(end) {
		// zero-length tail, nothing worth cloning
		return nil
	}

	res, err := q.Exec(`
		INSERT INTO facts (activity_id, start_time, end_time, description)
		     SELECT activity_id, ?, ?, description
		       FROM facts
		      WHERE id = ?`,
		formatTime(end), formatTime(oldEnd), id,
	)
	if err != nil {
		return err
	}
	tailID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = q.Exec(`
		INSERT INTO fact_tags (fact_id, tag_id)
		     SELECT ?, tag_id
		       FROM fact_tags
		      WHERE fact_id = ?`,
		tailID, id,
	)
	return err
}
