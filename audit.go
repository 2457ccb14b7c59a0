package main

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitAuditDB opens the local decision audit log. Every submitted
// verification is recorded here; the backend remains the source of truth
// for record state.
func InitAuditDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id   TEXT NOT NULL,
		valid       INTEGER NOT NULL,
		obstacle    INTEGER NOT NULL DEFAULT 0,
		flooded     INTEGER NOT NULL DEFAULT 0,
		trafficjam  INTEGER NOT NULL DEFAULT 0,
		police      INTEGER NOT NULL DEFAULT 0,
		moderator   TEXT NOT NULL,
		decided_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_record ON decisions(record_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_moderator ON decisions(moderator);

	CREATE TABLE IF NOT EXISTS watch_state (
		view       TEXT PRIMARY KEY,
		last_total INTEGER NOT NULL,
		checked_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordDecision appends one verification outcome to the audit log.
func RecordDecision(db *sql.DB, d Decision) error {
	_, err := db.Exec(
		`INSERT INTO decisions (record_id, valid, obstacle, flooded, trafficjam, police, moderator, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RecordID, boolInt(d.Valid),
		boolInt(d.Flags.Obstacle), boolInt(d.Flags.Flooded),
		boolInt(d.Flags.TrafficJam), boolInt(d.Flags.Police),
		d.Moderator, d.DecidedAt,
	)
	return err
}

// GetDecisionsByRecord returns all logged decisions for one record id,
// newest first.
func GetDecisionsByRecord(db *sql.DB, recordID string) ([]Decision, error) {
	rows, err := db.Query(
		`SELECT id, record_id, valid, obstacle, flooded, trafficjam, police, moderator, decided_at
		 FROM decisions WHERE record_id = ? ORDER BY decided_at DESC, id DESC`,
		recordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]Decision, error) {
	var out []Decision
	for rows.Next() {
		var d Decision
		var valid, obstacle, flooded, trafficjam, police int
		if err := rows.Scan(&d.ID, &d.RecordID, &valid, &obstacle, &flooded, &trafficjam, &police, &d.Moderator, &d.DecidedAt); err != nil {
			return nil, err
		}
		d.Valid = valid != 0
		d.Flags = VerifyFlags{
			Obstacle:   obstacle != 0,
			Flooded:    flooded != 0,
			TrafficJam: trafficjam != 0,
			Police:     police != 0,
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DecisionStats aggregates the audit log for the stats command.
type DecisionStats struct {
	Total       int
	Approved    int
	Rejected    int
	TagCounts   map[HazardTag]int
	ByModerator map[string]int
}

// GetDecisionStats aggregates decisions since the cutoff (zero cutoff means
// all time).
func GetDecisionStats(db *sql.DB, since time.Time) (DecisionStats, error) {
	stats := DecisionStats{
		TagCounts:   make(map[HazardTag]int),
		ByModerator: make(map[string]int),
	}

	query := `SELECT valid, obstacle, flooded, trafficjam, police, moderator FROM decisions`
	var args []any
	if !since.IsZero() {
		query += ` WHERE decided_at >= ?`
		args = append(args, since)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var valid, obstacle, flooded, trafficjam, police int
		var moderator string
		if err := rows.Scan(&valid, &obstacle, &flooded, &trafficjam, &police, &moderator); err != nil {
			return stats, err
		}
		stats.Total++
		if valid != 0 {
			stats.Approved++
		} else {
			stats.Rejected++
		}
		if obstacle != 0 {
			stats.TagCounts[TagObstacle]++
		}
		if flooded != 0 {
			stats.TagCounts[TagFlood]++
		}
		if trafficjam != 0 {
			stats.TagCounts[TagTrafficJam]++
		}
		if police != 0 {
			stats.TagCounts[TagPolice]++
		}
		stats.ByModerator[moderator]++
	}
	return stats, rows.Err()
}

// FormatDecisionStats renders the stats summary for Slack.
func FormatDecisionStats(stats DecisionStats) string {
	if stats.Total == 0 {
		return "No decisions recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Moderation decisions: %d* (%d approved, %d rejected)\n",
		stats.Total, stats.Approved, stats.Rejected)

	b.WriteString("Tags: ")
	var parts []string
	for _, tag := range AllHazardTags {
		if n := stats.TagCounts[tag]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", tag.Label(), n))
		}
	}
	if len(parts) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(parts, ", "))
	}
	b.WriteString("\n")

	moderators := make([]string, 0, len(stats.ByModerator))
	for m := range stats.ByModerator {
		moderators = append(moderators, m)
	}
	sort.Strings(moderators)
	for _, m := range moderators {
		fmt.Fprintf(&b, "• %s: %d\n", m, stats.ByModerator[m])
	}
	return b.String()
}

// GetWatchTotal reads the last recorded pending total for a report view.
func GetWatchTotal(db *sql.DB, view ReportView) (int, bool, error) {
	var total int
	err := db.QueryRow(`SELECT last_total FROM watch_state WHERE view = ?`, string(view)).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}

// SetWatchTotal stores the latest pending total for a report view.
func SetWatchTotal(db *sql.DB, view ReportView, total int) error {
	_, err := db.Exec(
		`INSERT INTO watch_state (view, last_total, checked_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(view) DO UPDATE SET last_total = excluded.last_total, checked_at = CURRENT_TIMESTAMP`,
		string(view), total,
	)
	return err
}
