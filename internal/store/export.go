package store

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ─── Export / Import ─────────────────────────────────────────────────────────

// ExportData is the full serializable dump of a factlog database. Facts
// carry their activity, category and tags by name so a snapshot can be
// restored into a store with different row ids.
type ExportData struct {
	ID         string       `json:"id"`
	Version    string       `json:"version"`
	ExportedAt string       `json:"exported_at"`
	Categories []string     `json:"categories,omitempty"`
	Tags       []Tag        `json:"tags,omitempty"`
	Facts      []ExportFact `json:"facts,omitempty"`
}

type ExportFact struct {
	Activity    string   `json:"activity"`
	Category    string   `json:"category,omitempty"`
	Start       string   `json:"start_time"`
	End         string   `json:"end_time,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ImportResult struct {
	FactsImported      int `json:"facts_imported"`
	CategoriesImported int `json:"categories_imported"`
	TagsImported       int `json:"tags_imported"`
}

func (s *Store) Export() (*ExportData, error) {
	data := &ExportData{
		ID:         ulid.Make().String(),
		Version:    "0.1.0",
		ExportedAt: formatTime(s.now()),
	}

	// Categories
	categories, err := s.Categories()
	if err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, c.Name)
	}

	// Tags, non-autocomplete ones included so flags survive the round trip
	if data.Tags, err = s.Tags(false); err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}

	// Facts, in timeline order
	rows, err := s.db.Query(factColumns+` ORDER BY f.start_time, f.id`, UnsortedName)
	if err != nil {
		return nil, fmt.Errorf("export facts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		ef := ExportFact{
			Activity:    f.Activity,
			Start:       formatTime(f.Start),
			Description: f.Description,
		}
		if f.CategoryID != UnsortedID {
			ef.Category = f.Category
		}
		if f.End != nil {
			ef.End = formatTime(*f.End)
		}
		if ef.Tags, err = factTags(s.db, f.ID); err != nil {
			return nil, err
		}
		data.Facts = append(data.Facts, ef)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// Import restores a snapshot. Names are resolved against the existing
// catalog, so importing into a non-empty store merges rather than
// duplicates; facts are inserted verbatim with no conflict resolution.
func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}

	for _, name := range data.Categories {
		_, exists, err := categoryByName(tx, name)
		if err != nil {
			return nil, fmt.Errorf("import category %q: %w", name, err)
		}
		if !exists {
			if _, err := addCategory(tx, name); err != nil {
				return nil, fmt.Errorf("import category %q: %w", name, err)
			}
			result.CategoriesImported++
		}
	}

	for _, t := range data.Tags {
		resolved, err := tagIDs(tx, []string{t.Name})
		if err != nil {
			return nil, fmt.Errorf("import tag %q: %w", t.Name, err)
		}
		if !t.Autocomplete && len(resolved) == 1 {
			if _, err := tx.Exec(`UPDATE tags SET autocomplete = 0 WHERE id = ?`, resolved[0].ID); err != nil {
				return nil, err
			}
		}
		result.TagsImported++
	}

	for _, ef := range data.Facts {
		categoryID := UnsortedID
		if ef.Category != "" {
			if categoryID, err = resolveCategory(tx, ef.Category); err != nil {
				return nil, fmt.Errorf("import fact %q: %w", ef.Activity, err)
			}
		}
		activityID, err := resolveActivity(tx, ef.Activity, categoryID, false)
		if err != nil {
			return nil, fmt.Errorf("import fact %q: %w", ef.Activity, err)
		}

		res, err := tx.Exec(
			`INSERT INTO facts (activity_id, start_time, end_time, description) VALUES (?, ?, ?, ?)`,
			activityID, ef.Start, nullableString(ef.End), nullableString(ef.Description),
		)
		if err != nil {
			return nil, fmt.Errorf("import fact %q: %w", ef.Activity, err)
		}
		factID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}

		tags, err := tagIDs(tx, ef.Tags)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
			if _, err := tx.Exec(`INSERT INTO fact_tags (fact_id, tag_id) VALUES (?, ?)`, factID, t.ID); err != nil {
				return nil, err
			}
		}
		result.FactsImported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import: commit: %w", err)
	}

	return result, nil
}
