package main

import (
	"reflect"
	"strings"
	"testing"
)

func sortFixture() ([]DataRecord, []Column[DataRecord]) {
	records := []DataRecord{
		{ID: "b", ContentType: ContentText, Score: 45, SubmittedAt: "02/05/2024 08:00:00", SubmittedBy: "Charlie"},
		{ID: "a", ContentType: ContentBoth, Score: 100, SubmittedAt: "01/05/2024 09:30:00", SubmittedBy: "alice"},
		{ID: "c", ContentType: ContentImage, Score: 9, SubmittedAt: "11/04/2024 17:00:00", SubmittedBy: "Bob"},
	}
	columns := reportColumns()
	return records, columns
}

func sortedIDs(records []DataRecord, columns []Column[DataRecord], state SortState) []string {
	return ids(SortRows(records, columns, state))
}

func TestSortStateToggle(t *testing.T) {
	var s SortState

	s = s.Toggle("score")
	if s.Field != "score" || s.Direction != SortAsc {
		t.Fatalf("first click: %+v", s)
	}
	s = s.Toggle("score")
	if s.Direction != SortDesc {
		t.Fatalf("second click should flip to desc: %+v", s)
	}
	s = s.Toggle("score")
	if s.Direction != SortAsc {
		t.Fatalf("third click should flip back to asc: %+v", s)
	}

	// A different column always starts ascending.
	s = s.Toggle("score")
	s = s.Toggle("submittedAt")
	if s.Field != "submittedAt" || s.Direction != SortAsc {
		t.Fatalf("column switch: %+v", s)
	}
}

func TestSortRowsNumeric(t *testing.T) {
	records, columns := sortFixture()

	got := sortedIDs(records, columns, SortState{Field: "score", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("score asc: %v", got)
	}

	got = sortedIDs(records, columns, SortState{Field: "score", Direction: SortDesc})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("score desc: %v", got)
	}
}

func TestSortRowsDates(t *testing.T) {
	records, columns := sortFixture()

	// Chronological, not lexicographic: 11/04 predates both May dates.
	got := sortedIDs(records, columns, SortState{Field: "submittedAt", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("date asc: %v", got)
	}
}

func TestSortRowsContentType(t *testing.T) {
	records, columns := sortFixture()

	got := sortedIDs(records, columns, SortState{Field: "contentType", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Fatalf("type asc: %v", got)
	}

	got = sortedIDs(records, columns, SortState{Field: "contentType", Direction: SortDesc})
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Fatalf("type desc: %v", got)
	}
}

func TestSortRowsStringsCaseInsensitive(t *testing.T) {
	records, columns := sortFixture()

	got := sortedIDs(records, columns, SortState{Field: "submittedBy", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Fatalf("submitter asc: %v", got)
	}
}

func TestSortRowsNoFieldKeepsOrder(t *testing.T) {
	records, columns := sortFixture()
	got := sortedIDs(records, columns, SortState{})
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("no sort field: %v", got)
	}
	// Unknown column is a no-op too.
	got = sortedIDs(records, columns, SortState{Field: "bogus", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("unknown column: %v", got)
	}
}

func TestSortRowsStableOnTies(t *testing.T) {
	records := []DataRecord{
		{ID: "first", Score: 50},
		{ID: "second", Score: 50},
		{ID: "third", Score: 50},
	}
	got := sortedIDs(records, reportColumns(), SortState{Field: "score", Direction: SortAsc})
	if !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("ties reordered: %v", got)
	}
}

func TestSortRowsDoesNotMutateInput(t *testing.T) {
	records, columns := sortFixture()
	before := ids(records)
	SortRows(records, columns, SortState{Field: "score", Direction: SortDesc})
	if !reflect.DeepEqual(ids(records), before) {
		t.Fatalf("input mutated: %v", ids(records))
	}
}

func TestCompareCells(t *testing.T) {
	if compareCells("9", "45") >= 0 {
		t.Fatal("numeric strings must compare numerically")
	}
	if compareCells("02/05/2024 08:00:00", "11/04/2024 17:00:00") <= 0 {
		t.Fatal("dates must compare chronologically")
	}
	if compareCells("apple", "Banana") >= 0 {
		t.Fatal("strings must compare case-insensitively")
	}
	if compareCells("alice", "alice") != 0 {
		t.Fatal("equal strings must compare equal")
	}
	// Mixed kinds degrade to string comparison.
	if compareCells("02/05/2024 08:00:00", "N/A") == 0 {
		t.Fatal("date vs non-date must not compare equal")
	}
}

func TestRenderTableLines(t *testing.T) {
	records, columns := sortFixture()
	state := SortState{Field: "score", Direction: SortDesc}

	lines := RenderTableLines(records, columns, state)
	if len(lines) != len(records)+1 {
		t.Fatalf("expected header plus %d rows, got %d lines", len(records), len(lines))
	}
	if !strings.Contains(lines[0], "Score ↓") {
		t.Fatalf("header missing sort indicator: %q", lines[0])
	}
	if !strings.Contains(lines[1], " | ") {
		t.Fatalf("row cells not delimited: %q", lines[1])
	}
}

func TestRenderTableLinesEmpty(t *testing.T) {
	_, columns := sortFixture()
	lines := RenderTableLines(nil, columns, SortState{})
	if len(lines) != 2 {
		t.Fatalf("empty table rendered %d lines", len(lines))
	}
	if lines[1] != tablePlaceholder {
		t.Fatalf("placeholder row = %q", lines[1])
	}
}
