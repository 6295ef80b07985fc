package store

import (
	"testing"
)

func TestAutocompleteActivitiesPrefixAndRecency(t *testing.T) {
	s, _ := newTestStore(t)

	mustAdd(t, s, AddFactParams{Input: "coding@work", Start: ptr(at(9, 0)), End: ptr(at(10, 0))})
	mustAdd(t, s, AddFactParams{Input: "cooking", Start: ptr(at(11, 0)), End: ptr(at(12, 0))})
	mustAdd(t, s, AddFactParams{Input: "piano", Start: ptr(at(12, 0)), End: ptr(at(13, 0))})

	matches, err := s.AutocompleteActivities("co")
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for prefix co, got %d: %+v", len(matches), matches)
	}
	// Most recently used first.
	if matches[0].Name != "cooking" || matches[1].Name != "coding" {
		t.Fatalf("unexpected order: %q, %q", matches[0].Name, matches[1].Name)
	}

	// LIKE metacharacters in the prefix must match literally.
	matches, err = s.AutocompleteActivities("%")
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for literal %%, got %+v", matches)
	}
}

func TestChangeCategoryMergesSameNameActivity(t *testing.T) {
	s, _ := newTestStore(t)

	first := mustAdd(t, s, AddFactParams{Input: "mail@work", Start: ptr(at(9, 0)), End: ptr(at(10, 0))})
	// Scope the second one to Unsorted explicitly; a bare "mail" would
	// resolve to the existing work activity by the global name lookup.
	second := mustAdd(t, s, AddFactParams{Input: "mail", Category: UnsortedName, Start: ptr(at(11, 0)), End: ptr(at(12, 0))})

	workID, ok, err := s.CategoryByName("work")
	if err != nil || !ok {
		t.Fatalf("category work: %v %v", ok, err)
	}
	kept, err := s.ActivityByName("mail", workID, false)
	if err != nil || kept == nil {
		t.Fatalf("activity mail@work: %v %v", kept, err)
	}
	loose, err := s.ActivityByName("mail", UnsortedID, false)
	if err != nil || loose == nil {
		t.Fatalf("activity mail (unsorted): %v %v", loose, err)
	}

	if _, err := s.ChangeCategory(loose.ID, workID); err != nil {
		t.Fatalf("change category: %v", err)
	}

	// Both facts now point at the surviving activity, the duplicate is gone.
	for _, id := range []int64{first, second} {
		f := mustGet(t, s, id)
		if f.ActivityID != kept.ID {
			t.Fatalf("fact %d still points at activity %d, want %d", id, f.ActivityID, kept.ID)
		}
		if f.Category != "work" {
			t.Fatalf("fact %d in category %q, want work", id, f.Category)
		}
	}

	activities, err := s.Activities(0)
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	count := 0
	for _, a := range activities {
		if a.Name == "mail" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected a single mail activity after merge, got %d", count)
	}
}

func TestRenamesShowUpInStoredFacts(t *testing.T) {
	s, _ := newTestStore(t)

	id := mustAdd(t, s, AddFactParams{Input: "coding@work", Start: ptr(at(9, 0)), End: ptr(at(10, 0))})

	workID, ok, err := s.CategoryByName("work")
	if err != nil || !ok {
		t.Fatalf("category work: %v %v", ok, err)
	}
	if _, err := s.UpdateCategory(workID, "office"); err != nil {
		t.Fatalf("rename category: %v", err)
	}

	act, err := s.ActivityByName("coding", workID, false)
	if err != nil || act == nil {
		t.Fatalf("activity coding: %v %v", act, err)
	}
	if _, err := s.UpdateActivity(act.ID, "hacking", workID); err != nil {
		t.Fatalf("rename activity: %v", err)
	}

	f := mustGet(t, s, id)
	if f.Activity != "hacking" || f.Category != "office" {
		t.Fatalf("expected hacking@office, got %s@%s", f.Activity, f.Category)
	}
}

func TestRemoveActivityHardDeletesWhenUnreferenced(t *testing.T) {
	s, _ := newTestStore(t)

	id, _, err := s.AddActivity("idle", 0)
	if err != nil {
		t.Fatalf("add activity: %v", err)
	}
	if _, err := s.RemoveActivity(id); err != nil {
		t.Fatalf("remove activity: %v", err)
	}

	a, err := s.ActivityByName("idle", 0, false)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a != nil {
		t.Fatalf("expected idle to be gone entirely, got %+v", a)
	}
}
