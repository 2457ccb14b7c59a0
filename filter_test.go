package main

import (
	"reflect"
	"testing"
)

func filterFixture() []DataRecord {
	return []DataRecord{
		{ID: "rep-001", Description: "Segment: hanoi-12", Status: StatusPending, ContentType: ContentImage, Score: 45, SubmittedBy: "alice"},
		{ID: "rep-002", Description: "Segment: saigon-03", Status: StatusApproved, ContentType: ContentBoth, Score: 82, SubmittedBy: "bob"},
		{ID: "rep-003", Description: "N/A", Status: StatusRejected, ContentType: ContentText, Score: 17, SubmittedBy: "alice-nguyen"},
	}
}

func ids(records []DataRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterRecordsNoConstraintsIsIdentity(t *testing.T) {
	records := filterFixture()
	got := FilterRecords(records, EmptyFilter())
	if !reflect.DeepEqual(ids(got), ids(records)) {
		t.Fatalf("empty filter changed the result: %v", ids(got))
	}
}

func TestFilterRecordsScoreRange(t *testing.T) {
	records := filterFixture()

	got := FilterRecords(records, FilterState{Status: "all", ContentType: "all", MinScore: "50"})
	if !reflect.DeepEqual(ids(got), []string{"rep-002"}) {
		t.Fatalf("minScore 50 returned %v", ids(got))
	}

	got = FilterRecords(records, FilterState{Status: "all", ContentType: "all", MaxScore: "50"})
	if !reflect.DeepEqual(ids(got), []string{"rep-001", "rep-003"}) {
		t.Fatalf("maxScore 50 returned %v", ids(got))
	}

	// Blank and unparseable bounds fall back to 0 and 100.
	got = FilterRecords(records, FilterState{Status: "all", ContentType: "all", MinScore: "abc", MaxScore: ""})
	if len(got) != 3 {
		t.Fatalf("defaulted bounds filtered out records: %v", ids(got))
	}

	// Boundary scores are inclusive.
	got = FilterRecords(records, FilterState{Status: "all", ContentType: "all", MinScore: "45", MaxScore: "45"})
	if !reflect.DeepEqual(ids(got), []string{"rep-001"}) {
		t.Fatalf("inclusive bounds returned %v", ids(got))
	}
}

func TestFilterRecordsSearch(t *testing.T) {
	records := filterFixture()

	// Search matches id or description, case-insensitively.
	got := FilterRecords(records, FilterState{Search: "REP-002", Status: "all", ContentType: "all"})
	if !reflect.DeepEqual(ids(got), []string{"rep-002"}) {
		t.Fatalf("id search returned %v", ids(got))
	}

	got = FilterRecords(records, FilterState{Search: "Hanoi", Status: "all", ContentType: "all"})
	if !reflect.DeepEqual(ids(got), []string{"rep-001"}) {
		t.Fatalf("description search returned %v", ids(got))
	}

	got = FilterRecords(records, FilterState{Search: "nothing-matches", Status: "all", ContentType: "all"})
	if len(got) != 0 {
		t.Fatalf("miss search returned %v", ids(got))
	}
}

func TestFilterRecordsStatusAndContentType(t *testing.T) {
	records := filterFixture()

	got := FilterRecords(records, FilterState{Status: "approved", ContentType: "all"})
	if !reflect.DeepEqual(ids(got), []string{"rep-002"}) {
		t.Fatalf("status filter returned %v", ids(got))
	}

	got = FilterRecords(records, FilterState{Status: "all", ContentType: "text"})
	if !reflect.DeepEqual(ids(got), []string{"rep-003"}) {
		t.Fatalf("content type filter returned %v", ids(got))
	}

	// Filters combine as a conjunction.
	got = FilterRecords(records, FilterState{Status: "approved", ContentType: "text"})
	if len(got) != 0 {
		t.Fatalf("conjunction returned %v", ids(got))
	}
}

func TestFilterRecordsSubmitter(t *testing.T) {
	records := filterFixture()

	// Substring match: "alice" also hits "alice-nguyen".
	got := FilterRecords(records, FilterState{Status: "all", ContentType: "all", SubmittedBy: "ALICE"})
	if !reflect.DeepEqual(ids(got), []string{"rep-001", "rep-003"}) {
		t.Fatalf("submitter filter returned %v", ids(got))
	}
}

func TestFilterRecordsDoesNotMutateInput(t *testing.T) {
	records := filterFixture()
	before := ids(records)
	FilterRecords(records, FilterState{Status: "approved", ContentType: "all"})
	if !reflect.DeepEqual(ids(records), before) {
		t.Fatalf("input order changed: %v", ids(records))
	}
}

func TestActiveFilterCount(t *testing.T) {
	if got := ActiveFilterCount(EmptyFilter()); got != 0 {
		t.Fatalf("empty filter counted %d", got)
	}
	f := FilterState{
		Search:      "flood",
		Status:      "pending",
		ContentType: "all",
		MinScore:    "10",
		SubmittedBy: " ",
	}
	if got := ActiveFilterCount(f); got != 3 {
		t.Fatalf("counted %d active filters, want 3", got)
	}
}
