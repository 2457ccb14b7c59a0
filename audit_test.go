package main

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestAuditDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hazardmod-test.db")
	db, err := InitAuditDB(dbPath)
	if err != nil {
		t.Fatalf("InitAuditDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndFetchDecisions(t *testing.T) {
	db := newTestAuditDB(t)
	base := time.Now().UTC().Truncate(time.Second)

	first := Decision{
		RecordID:  "rep-001",
		Valid:     true,
		Flags:     VerifyFlags{Flooded: true},
		Moderator: "alice",
		DecidedAt: base,
	}
	second := Decision{
		RecordID:  "rep-001",
		Valid:     false,
		Moderator: "bob",
		DecidedAt: base.Add(time.Hour),
	}
	for _, d := range []Decision{first, second} {
		if err := RecordDecision(db, d); err != nil {
			t.Fatalf("RecordDecision failed: %v", err)
		}
	}

	got, err := GetDecisionsByRecord(db, "rep-001")
	if err != nil {
		t.Fatalf("GetDecisionsByRecord failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(got))
	}
	// Newest first.
	if got[0].Moderator != "bob" || got[0].Valid {
		t.Fatalf("newest decision = %+v", got[0])
	}
	if got[1].Moderator != "alice" || !got[1].Flags.Flooded {
		t.Fatalf("oldest decision = %+v", got[1])
	}

	other, err := GetDecisionsByRecord(db, "rep-999")
	if err != nil {
		t.Fatalf("GetDecisionsByRecord for unknown record failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("unknown record returned %d decisions", len(other))
	}
}

func TestDecisionStats(t *testing.T) {
	db := newTestAuditDB(t)
	base := time.Now().UTC()

	decisions := []Decision{
		{RecordID: "r1", Valid: true, Flags: VerifyFlags{Flooded: true, Police: true}, Moderator: "alice", DecidedAt: base.AddDate(0, 0, -30)},
		{RecordID: "r2", Valid: true, Flags: VerifyFlags{Obstacle: true}, Moderator: "alice", DecidedAt: base.Add(-time.Hour)},
		{RecordID: "r3", Valid: false, Moderator: "bob", DecidedAt: base.Add(-time.Minute)},
	}
	for _, d := range decisions {
		if err := RecordDecision(db, d); err != nil {
			t.Fatalf("RecordDecision failed: %v", err)
		}
	}

	stats, err := GetDecisionStats(db, time.Time{})
	if err != nil {
		t.Fatalf("GetDecisionStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Approved != 2 || stats.Rejected != 1 {
		t.Fatalf("all-time stats = %+v", stats)
	}
	if stats.TagCounts[TagFlood] != 1 || stats.TagCounts[TagObstacle] != 1 || stats.TagCounts[TagPolice] != 1 {
		t.Fatalf("tag counts = %v", stats.TagCounts)
	}
	if stats.ByModerator["alice"] != 2 || stats.ByModerator["bob"] != 1 {
		t.Fatalf("moderator counts = %v", stats.ByModerator)
	}

	// Cutoff excludes the 30-day-old decision.
	weekly, err := GetDecisionStats(db, base.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetDecisionStats with cutoff failed: %v", err)
	}
	if weekly.Total != 2 || weekly.Approved != 1 || weekly.Rejected != 1 {
		t.Fatalf("weekly stats = %+v", weekly)
	}
}

func TestFormatDecisionStats(t *testing.T) {
	if got := FormatDecisionStats(DecisionStats{}); got != "No decisions recorded yet." {
		t.Fatalf("empty stats rendered %q", got)
	}

	stats := DecisionStats{
		Total:       3,
		Approved:    2,
		Rejected:    1,
		TagCounts:   map[HazardTag]int{TagFlood: 2},
		ByModerator: map[string]int{"bob": 1, "alice": 2},
	}
	got := FormatDecisionStats(stats)
	if !strings.Contains(got, "3") || !strings.Contains(got, "2 approved, 1 rejected") {
		t.Fatalf("summary line missing: %q", got)
	}
	if !strings.Contains(got, "Flood 2") {
		t.Fatalf("tag line missing: %q", got)
	}
	// Moderators render in sorted order for stable output.
	if strings.Index(got, "alice") > strings.Index(got, "bob") {
		t.Fatalf("moderators not sorted: %q", got)
	}
}

func TestWatchTotals(t *testing.T) {
	db := newTestAuditDB(t)

	_, known, err := GetWatchTotal(db, ReportNeeded)
	if err != nil {
		t.Fatalf("GetWatchTotal failed: %v", err)
	}
	if known {
		t.Fatal("fresh database should have no recorded total")
	}

	if err := SetWatchTotal(db, ReportNeeded, 12); err != nil {
		t.Fatalf("SetWatchTotal failed: %v", err)
	}
	total, known, err := GetWatchTotal(db, ReportNeeded)
	if err != nil || !known || total != 12 {
		t.Fatalf("after set: total=%d known=%t err=%v", total, known, err)
	}

	// Upsert overwrites the previous value.
	if err := SetWatchTotal(db, ReportNeeded, 7); err != nil {
		t.Fatalf("SetWatchTotal upsert failed: %v", err)
	}
	total, _, _ = GetWatchTotal(db, ReportNeeded)
	if total != 7 {
		t.Fatalf("after upsert: total=%d", total)
	}

	// Totals are tracked per view.
	if _, known, _ := GetWatchTotal(db, ReportUnqualified); known {
		t.Fatal("other view must not inherit the total")
	}
}
