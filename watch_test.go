package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestFormatBacklogNotice(t *testing.T) {
	if got := FormatBacklogNotice(0); !strings.Contains(got, "cleared") {
		t.Fatalf("zero backlog rendered %q", got)
	}
	if got := FormatBacklogNotice(1); !strings.HasPrefix(got, "1 report is") {
		t.Fatalf("single backlog rendered %q", got)
	}
	got := FormatBacklogNotice(14)
	if !strings.HasPrefix(got, "14 reports are") || !strings.Contains(got, "/reports needed") {
		t.Fatalf("plural backlog rendered %q", got)
	}
}

func TestCheckBacklog(t *testing.T) {
	db := newTestAuditDB(t)

	total := 5
	backend, _ := newBackendServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/report/neededValidation" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(reportPageResponse{Total: total})
	})

	// First check has no baseline, so it always reports a change.
	got, changed, err := CheckBacklog(backend, db)
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	if got != 5 || !changed {
		t.Fatalf("first check: total=%d changed=%t", got, changed)
	}

	// Same total again: no change.
	got, changed, err = CheckBacklog(backend, db)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if got != 5 || changed {
		t.Fatalf("second check: total=%d changed=%t", got, changed)
	}

	// The backlog moved.
	total = 9
	got, changed, err = CheckBacklog(backend, db)
	if err != nil {
		t.Fatalf("third check failed: %v", err)
	}
	if got != 9 || !changed {
		t.Fatalf("third check: total=%d changed=%t", got, changed)
	}
}
