package main

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column describes one table column over a row type. Value extracts the raw
// cell value used for sorting and display; Render, when set, overrides the
// displayed text.
type Column[T any] struct {
	Key      string
	Header   string
	Sortable bool
	Value    func(T) string
	Render   func(T) string
}

func (c Column[T]) cell(row T) string {
	if c.Render != nil {
		return c.Render(row)
	}
	if c.Value != nil {
		return c.Value(row)
	}
	return ""
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortState is the active sort column and direction. A zero Field means no
// sort is applied and rows keep their fetch/filter order.
type SortState struct {
	Field     string
	Direction SortDirection
}

// Toggle cycles the sort state for a column: clicking the active column
// flips the direction, clicking a different column starts ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == SortAsc {
			return SortState{Field: field, Direction: SortDesc}
		}
		return SortState{Field: field, Direction: SortAsc}
	}
	return SortState{Field: field, Direction: SortAsc}
}

// Indicator returns the arrow suffix for a column header.
func (s SortState) Indicator(field string) string {
	if s.Field != field {
		return ""
	}
	if s.Direction == SortDesc {
		return " ↓"
	}
	return " ↑"
}

func parseSortTime(s string) (time.Time, bool) {
	for _, layout := range []string{displayTimeLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// compareCells orders two raw cell values: as timestamps when both parse as
// dates, numerically when both parse as numbers, otherwise as
// case-insensitive strings.
func compareCells(a, b string) int {
	if at, aok := parseSortTime(a); aok {
		if bt, bok := parseSortTime(b); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}
	if af, aerr := strconv.ParseFloat(a, 64); aerr == nil {
		if bf, berr := strconv.ParseFloat(b, 64); berr == nil {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// SortRows returns the rows ordered by the active sort column. Ties keep
// their relative order; with no active column the input is returned as is.
// The input slice is never mutated.
func SortRows[T any](rows []T, columns []Column[T], state SortState) []T {
	if state.Field == "" {
		return rows
	}
	var col *Column[T]
	for i := range columns {
		if columns[i].Key == state.Field {
			col = &columns[i]
			break
		}
	}
	if col == nil || col.Value == nil {
		return rows
	}

	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compareCells(col.Value(sorted[i]), col.Value(sorted[j]))
		if state.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

// tablePlaceholder is the single row shown for a zero-row result.
const tablePlaceholder = "No data found"

// RenderTableLines renders rows as monospace-friendly text lines, one per
// row, preceded by a header line with sort indicators. A zero-row result
// renders the placeholder row.
func RenderTableLines[T any](rows []T, columns []Column[T], state SortState) []string {
	header := make([]string, 0, len(columns))
	for _, col := range columns {
		h := col.Header
		if col.Sortable {
			h += state.Indicator(col.Key)
		}
		header = append(header, h)
	}
	lines := []string{strings.Join(header, " | ")}

	if len(rows) == 0 {
		lines = append(lines, tablePlaceholder)
		return lines
	}
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, col.cell(row))
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return lines
}
