package main

import (
	"strconv"
	"strings"
)

// scoreBound parses a string-encoded bound, falling back to the default when
// the field is blank or not an integer.
func scoreBound(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// FilterRecords evaluates the conjunction of all filter predicates over the
// records, preserving input order. The input slice is never mutated.
func FilterRecords(records []DataRecord, f FilterState) []DataRecord {
	search := strings.ToLower(f.Search)
	submitter := strings.ToLower(f.SubmittedBy)
	minScore := scoreBound(f.MinScore, 0)
	maxScore := scoreBound(f.MaxScore, 100)

	out := make([]DataRecord, 0, len(records))
	for _, r := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ID), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		if f.Status != "" && f.Status != "all" && string(r.Status) != f.Status {
			continue
		}
		if f.ContentType != "" && f.ContentType != "all" && string(r.ContentType) != f.ContentType {
			continue
		}
		if submitter != "" && !strings.Contains(strings.ToLower(r.SubmittedBy), submitter) {
			continue
		}
		if r.Score < minScore || r.Score > maxScore {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ActiveFilterCount counts the constraints that differ from the
// no-constraint state, for the filter badge.
func ActiveFilterCount(f FilterState) int {
	count := 0
	for _, s := range []string{f.Search, f.SubmittedBy, f.MinScore, f.MaxScore} {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	if f.Status != "" && f.Status != "all" {
		count++
	}
	if f.ContentType != "" && f.ContentType != "all" {
		count++
	}
	return count
}
