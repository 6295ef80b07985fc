package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// ─── Categories ──────────────────────────────────────────────────────────────

func (s *Store) Categories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT id, name FROM categories ORDER BY category_order, lower(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// CategoryByName does a case-insensitive lookup; 0 and false when absent.
func (s *Store) CategoryByName(name string) (int64, bool, error) {
	return categoryByName(s.db, name)
}

func categoryByName(q querier, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRow(
		`SELECT id FROM categories WHERE lower(name) = lower(?) ORDER BY id DESC LIMIT 1`,
		name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Store) AddCategory(name string) (int64, Change, error) {
	id, err := addCategory(s.db, name)
	if err != nil {
		return 0, Change{}, err
	}
	return id, newChange(false, true, false), nil
}

func addCategory(q querier, name string) (int64, error) {
	var order int64
	q.QueryRow(`SELECT coalesce(MAX(category_order), 0) + 1 FROM categories`).Scan(&order)

	res, err := q.Exec(`INSERT INTO categories (name, category_order) VALUES (?, ?)`, name, order)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// resolveCategory finds or creates the category. The Unsorted sentinel is
// returned for an empty name and never created as a row.
func resolveCategory(q querier, name string) (int64, error) {
	if strings.TrimSpace(name) == "" || strings.EqualFold(name, UnsortedName) {
		return UnsortedID, nil
	}
	id, ok, err := categoryByName(q, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	return addCategory(q, name)
}

func (s *Store) UpdateCategory(id int64, name string) (Change, error) {
	if id == UnsortedID {
		return Change{}, nil
	}
	if _, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id); err != nil {
		return Change{}, err
	}
	return newChange(false, true, false), nil
}

// RemoveCategory moves the category's activities to Unsorted, then deletes it.
func (s *Store) RemoveCategory(id int64) (Change, error) {
	if id == UnsortedID {
		return Change{}, nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE activities SET category_id = ? WHERE category_id = ?`, UnsortedID, id); err != nil {
		return Change{}, err
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return Change{}, err
	}
	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	return newChange(false, true, false), nil
}

// ─── Activities ──────────────────────────────────────────────────────────────

// ActivityByName finds the most recent, preferably non-deleted activity with
// the given name, scoped to a category when categoryID != 0. A soft-deleted
// match is resurrected (undeleted and moved to Unsorted) unless resurrect is
// false, in which case it is returned as found.
func (s *Store) ActivityByName(name string, categoryID int64, resurrect bool) (*Activity, error) {
	return activityByName(s.db, name, categoryID, resurrect)
}

func activityByName(q querier, name string, categoryID int64, resurrect bool) (*Activity, error) {
	query := `
		SELECT a.id, a.name, a.category_id, coalesce(c.name, ?), a.deleted IS NOT NULL
		  FROM activities a
	 LEFT JOIN categories c ON a.category_id = c.id
	     WHERE lower(a.name) = lower(?)`
	args := []any{UnsortedName, name}
	if categoryID != 0 {
		query += ` AND a.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY a.deleted IS NOT NULL, a.id DESC LIMIT 1`

	var a Activity
	err := q.QueryRow(query, args...).Scan(&a.ID, &a.Name, &a.CategoryID, &a.Category, &a.Deleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.Deleted && resurrect {
		if _, err := q.Exec(
			`UPDATE activities SET deleted = NULL, category_id = ? WHERE id = ?`,
			UnsortedID, a.ID,
		); err != nil {
			return nil, err
		}
		a.Deleted = false
		a.CategoryID = UnsortedID
		a.Category = UnsortedName
	}
	return &a, nil
}

func (s *Store) AddActivity(name string, categoryID int64) (int64, Change, error) {
	id, err := addActivity(s.db, name, categoryID, false)
	if err != nil {
		return 0, Change{}, err
	}
	return id, newChange(false, true, false), nil
}

// addActivity creates a new activity row. A temporary activity is born
// soft-deleted so it never shows up in the catalog or autocomplete.
func addActivity(q querier, name string, categoryID int64, temporary bool) (int64, error) {
	if categoryID == 0 {
		categoryID = UnsortedID
	}
	var order int64
	q.QueryRow(`SELECT coalesce(MAX(activity_order), 0) + 1 FROM activities`).Scan(&order)

	deleted := any(nil)
	if temporary {
		deleted = 1
	}
	res, err := q.Exec(
		`INSERT INTO activities (name, category_id, activity_order, deleted) VALUES (?, ?, ?, ?)`,
		name, categoryID, order, deleted,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// resolveActivity materializes the activity identity for a fact: lookup with
// resurrection, or creation (soft-deleted when temporary).
func resolveActivity(q querier, name string, categoryID int64, temporary bool) (int64, error) {
	a, err := activityByName(q, name, categoryID, !temporary)
	if err != nil {
		return 0, err
	}
	if a != nil {
		return a.ID, nil
	}
	return addActivity(q, name, categoryID, temporary)
}

// Activities lists non-deleted activities; scoped to a category when
// categoryID != 0, otherwise all, ordered by name.
func (s *Store) Activities(categoryID int64) ([]Activity, error) {
	query := `
		SELECT a.id, a.name, a.category_id, coalesce(c.name, ?), 0
		  FROM activities a
	 LEFT JOIN categories c ON a.category_id = c.id
	     WHERE a.deleted IS NULL`
	args := []any{UnsortedName}
	if categoryID != 0 {
		query += ` AND a.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY lower(a.name)`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Activity
	for rows.Next() {
		var a Activity
		var deleted int
		if err := rows.Scan(&a.ID, &a.Name, &a.CategoryID, &a.Category, &deleted); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// AutocompleteActivities returns up to 50 non-deleted activities whose name
// starts with prefix, most recently used first.
func (s *Store) AutocompleteActivities(prefix string) ([]Activity, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	rows, err := s.db.Query(`
		SELECT a.id, lower(a.name), a.category_id, coalesce(c.name, ?)
		  FROM activities a
	 LEFT JOIN categories c ON a.category_id = c.id
	 LEFT JOIN facts f ON f.activity_id = a.id
	     WHERE a.deleted IS NULL
	       AND a.name LIKE ? ESCAPE '\'
	  GROUP BY a.id
	  ORDER BY MAX(f.start_time) DESC, lower(a.name)
	     LIMIT 50`,
		UnsortedName, escaped+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.CategoryID, &a.Category); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *Store) UpdateActivity(id int64, name string, categoryID int64) (Change, error) {
	if _, err := s.db.Exec(
		`UPDATE activities SET name = ?, category_id = ? WHERE id = ?`,
		name, categoryID, id,
	); err != nil {
		return Change{}, err
	}
	return newChange(false, true, false), nil
}

// RemoveActivity soft-deletes the activity when facts still reference it,
// otherwise removes the row entirely.
func (s *Store) RemoveActivity(id int64) (Change, error) {
	var bound int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM facts WHERE activity_id = ?`, id).Scan(&bound); err != nil {
		return Change{}, err
	}

	if bound > 0 {
		if _, err := s.db.Exec(`UPDATE activities SET deleted = 1 WHERE id = ?`, id); err != nil {
			return Change{}, err
		}
	} else {
		if _, err := s.db.Exec(`DELETE FROM activities WHERE id = ?`, id); err != nil {
			return Change{}, err
		}
	}
	return newChange(false, true, false), nil
}

// ChangeCategory moves an activity to another category. If the target
// category already has an activity with the same name, the two are merged:
// facts are repointed and the moved activity is removed.
func (s *Store) ChangeCategory(id, categoryID int64) (Change, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback()

	var name string
	if err := tx.QueryRow(`SELECT name FROM activities WHERE id = ?`, id).Scan(&name); err != nil {
		return Change{}, fmt.Errorf("change category: %w", err)
	}

	existing, err := activityByName(tx, name, categoryID, false)
	if err != nil {
		return Change{}, err
	}

	if existing != nil && existing.ID != id {
		if _, err := tx.Exec(`UPDATE facts SET activity_id = ? WHERE activity_id = ?`, existing.ID, id); err != nil {
			return Change{}, err
		}
		if _, err := tx.Exec(`DELETE FROM activities WHERE id = ?`, id); err != nil {
			return Change{}, err
		}
	} else if existing == nil || existing.ID != id {
		if _, err := tx.Exec(`UPDATE activities SET category_id = ? WHERE id = ?`, categoryID, id); err != nil {
			return Change{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	return newChange(true, true, false), nil
}

// ─── Tags ────────────────────────────────────────────────────────────────────

func (s *Store) Tags(onlyAutocomplete bool) ([]Tag, error) {
	query := `SELECT id, name, autocomplete FROM tags`
	if onlyAutocomplete {
		query += ` WHERE autocomplete = 1`
	}
	query += ` ORDER BY lower(name)`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Autocomplete); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// tagIDs looks tags up by name, creating the missing ones and re-flagging
// found ones for autocomplete. Names are matched case-insensitively; the
// result is ordered by name.
func tagIDs(q querier, names []string) ([]Tag, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	var found []Tag
	for _, name := range names {
		var t Tag
		err := q.QueryRow(
			`SELECT id, name, autocomplete FROM tags WHERE lower(name) = lower(?) LIMIT 1`,
			name,
		).Scan(&t.ID, &t.Name, &t.Autocomplete)
		if err == sql.ErrNoRows {
			res, err := q.Exec(`INSERT INTO tags (name, autocomplete) VALUES (?, 1)`, name)
			if err != nil {
				return nil, err
			}
			t.ID, _ = res.LastInsertId()
			t.Name = name
			t.Autocomplete = true
		} else if err != nil {
			return nil, err
		} else if !t.Autocomplete {
			// referenced again — back into the autocomplete pool
			if _, err := q.Exec(`UPDATE tags SET autocomplete = 1 WHERE id = ?`, t.ID); err != nil {
				return nil, err
			}
			t.Autocomplete = true
		}
		found = append(found, t)
	}
	return found, nil
}

// UpdateAutocompleteTags reconciles the tag catalog against the full list of
// tags the user still wants offered: tags outside the list are deleted when
// nothing references them, or kept but dropped from autocomplete while facts
// still point at them.
func (s *Store) UpdateAutocompleteTags(names []string) (Change, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Change{}, err
	}
	defer tx.Rollback()

	kept, err := tagIDs(tx, names)
	if err != nil {
		return Change{}, err
	}
	keptIDs := make(map[int64]bool, len(kept))
	for _, t := range kept {
		keptIDs[t.ID] = true
	}

	rows, err := tx.Query(`
		SELECT t.id, t.autocomplete, COUNT(ft.fact_id)
		  FROM tags t
	 LEFT JOIN fact_tags ft ON ft.tag_id = t.id
	  GROUP BY t.id`)
	if err != nil {
		return Change{}, err
	}

	type gone struct {
		id           int64
		autocomplete bool
		refs         int
	}
	var outside []gone
	for rows.Next() {
		var g gone
		if err := rows.Scan(&g.id, &g.autocomplete, &g.refs); err != nil {
			rows.Close()
			return Change{}, err
		}
		if !keptIDs[g.id] {
			outside = append(outside, g)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Change{}, err
	}

	changed := false
	for _, g := range outside {
		switch {
		case g.refs == 0:
			if _, err := tx.Exec(`DELETE FROM tags WHERE id = ?`, g.id); err != nil {
				return Change{}, err
			}
			changed = true
		case g.autocomplete:
			if _, err := tx.Exec(`UPDATE tags SET autocomplete = 0 WHERE id = ?`, g.id); err != nil {
				return Change{}, err
			}
			changed = true
		}
	}

	if err := tx.Commit(); err != nil {
		return Change{}, err
	}
	if !changed {
		return Change{}, nil
	}
	return newChange(false, false, true), nil
}

// normalizeTagNames trims, drops empties and case-insensitive duplicates.
func normalizeTagNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if strings.EqualFold(seen, n) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}

// sortedTagNames is the canonical order used when comparing fact tag sets.
func sortedTagNames(tags []string) []string {
	out := append([]string(nil), tags...)
	sort.Strings(out)
	return out
}
