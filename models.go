package main

import "time"

// ReviewStatus is the canonical moderation state of a report. The backend
// exposes a nullable statusID; a null statusID means the report has not been
// reviewed yet and maps to StatusPending.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

type ContentType string

const (
	ContentImage ContentType = "image"
	ContentText  ContentType = "text"
	ContentBoth  ContentType = "both"
)

// HazardTag is one of the fixed approval-tag vocabulary values a moderator
// can attach to an approved report.
type HazardTag string

const (
	TagObstacle   HazardTag = "obstacle"
	TagFlood      HazardTag = "flood"
	TagTrafficJam HazardTag = "trafficjam"
	TagPolice     HazardTag = "police"
)

// AllHazardTags lists the vocabulary in display order.
var AllHazardTags = []HazardTag{TagObstacle, TagFlood, TagTrafficJam, TagPolice}

func (t HazardTag) Label() string {
	switch t {
	case TagObstacle:
		return "Obstacle"
	case TagFlood:
		return "Flood"
	case TagTrafficJam:
		return "Traffic Jam"
	case TagPolice:
		return "Police"
	}
	return string(t)
}

// ParseHazardTag returns the tag for a vocabulary value, or "" if unknown.
func ParseHazardTag(s string) HazardTag {
	for _, t := range AllHazardTags {
		if string(t) == s {
			return t
		}
	}
	return ""
}

// VerifyFlags is the flag map sent with a manual-verification decision.
type VerifyFlags struct {
	Obstacle   bool `json:"Obstacle"`
	Flooded    bool `json:"Flooded"`
	TrafficJam bool `json:"TrafficJam"`
	Police     bool `json:"Police"`
}

// DataRecord is the normalized display projection of one report. Records are
// read-only: a decision is sent to the backend and the list is re-fetched,
// never patched locally.
type DataRecord struct {
	ID          string
	Description string
	Status      ReviewStatus
	Score       int // 0-100
	ContentType ContentType
	SubmittedBy string
	SubmittedAt string // formatted for display
	ImageID     string
	TextID      string
	Qualified   bool
	Location    string // "lat, lon" or "N/A"
	SegmentID   string
	StatusID    string // raw backend value, empty when unreviewed
}

// Decided reports only offer a close action in the detail view.
func (r DataRecord) Decided() bool {
	return r.StatusID != ""
}

// DataRow is the normalized display projection of one raw data item in the
// data-management view.
type DataRow struct {
	ID            string
	UploaderID    string
	Type          ContentType
	InfoID        string
	ReportID      string
	UploadTime    string
	Processed     bool
	ProcessedTime string // "N/A" when the item was never processed
	Split         SplitLabel
	Location      string
	StatusID      string
}

// SplitLabel is the train/val/test assignment of a data item.
type SplitLabel int

const (
	SplitNone  SplitLabel = 0
	SplitTrain SplitLabel = 1
	SplitVal   SplitLabel = 2
	SplitTest  SplitLabel = 3
)

func (s SplitLabel) String() string {
	switch s {
	case SplitTrain:
		return "Train"
	case SplitVal:
		return "Val"
	case SplitTest:
		return "Test"
	}
	return "None"
}

// FilterState is the moderator's current filter selection. Empty string
// fields mean "no constraint"; blank or unparseable score bounds default to
// 0 and 100.
type FilterState struct {
	Search      string
	Status      string // ReviewStatus value or "all"
	ContentType string // ContentType value or "all"
	MinScore    string
	MaxScore    string
	SubmittedBy string
}

// EmptyFilter returns the no-constraint filter state.
func EmptyFilter() FilterState {
	return FilterState{Status: "all", ContentType: "all"}
}

// Decision is a recorded manual-verification outcome.
type Decision struct {
	ID        int64
	RecordID  string
	Valid     bool
	Flags     VerifyFlags
	Moderator string
	DecidedAt time.Time
}
