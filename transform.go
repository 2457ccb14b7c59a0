package main

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const notAvailable = "N/A"

const displayTimeLayout = "02/01/2006 15:04:05"

// formatBackendTime renders a backend timestamp in the configured location.
// Malformed or empty timestamps degrade to N/A, never error.
func formatBackendTime(raw string, loc *time.Location) string {
	if raw == "" {
		return notAvailable
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Some backend revisions omit the timezone suffix.
		ts, err = time.Parse("2006-01-02T15:04:05", raw)
		if err != nil {
			return raw
		}
	}
	if loc != nil {
		ts = ts.In(loc)
	}
	return ts.Format(displayTimeLayout)
}

// deriveContentType classifies a record by which content ids are present.
// Both takes priority over image over text.
func deriveContentType(imgID, textID string) ContentType {
	switch {
	case imgID != "" && textID != "":
		return ContentBoth
	case imgID != "":
		return ContentImage
	default:
		return ContentText
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// statusFromID maps the backend's nullable statusID to the canonical
// review status.
func statusFromID(statusID string) ReviewStatus {
	switch statusID {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	}
	return StatusPending
}

// TransformReports maps raw report records into normalized display records.
// There is no error path: missing fields degrade to sentinel values.
func TransformReports(raw []reportRecordResponse, loc *time.Location) []DataRecord {
	records := make([]DataRecord, 0, len(raw))
	for _, r := range raw {
		location := notAvailable
		if r.Lat != nil && r.Lon != nil {
			location = fmt.Sprintf("%s, %s",
				strconv.FormatFloat(*r.Lat, 'f', -1, 64),
				strconv.FormatFloat(*r.Lon, 'f', -1, 64))
		}

		description := notAvailable
		if r.SegmentID != "" {
			description = "Segment: " + r.SegmentID
		}

		statusID := derefString(r.StatusID)
		qualified := r.Qualified != nil && *r.Qualified

		records = append(records, DataRecord{
			ID:          r.ID,
			Description: description,
			Status:      statusFromID(statusID),
			Score:       clampScore(int(math.Round(r.Eval * 100))),
			ContentType: deriveContentType(derefString(r.DataImgID), derefString(r.DataTextID)),
			SubmittedBy: r.UploaderID,
			SubmittedAt: formatBackendTime(r.CreatedDate, loc),
			ImageID:     derefString(r.DataImgID),
			TextID:      derefString(r.DataTextID),
			Qualified:   qualified,
			Location:    location,
			SegmentID:   r.SegmentID,
			StatusID:    statusID,
		})
	}
	return records
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TransformData maps raw data items into display rows for the
// data-management view.
func TransformData(raw []dataItemResponse, loc *time.Location) []DataRow {
	rows := make([]DataRow, 0, len(raw))
	for _, d := range raw {
		processedTime := notAvailable
		if d.ProcessedTime != nil {
			processedTime = formatBackendTime(*d.ProcessedTime, loc)
		}

		location := notAvailable
		if d.Location != nil && *d.Location != "" {
			location = *d.Location
		}

		ctype := ContentText
		if d.Type == string(ContentImage) {
			ctype = ContentImage
		}

		rows = append(rows, DataRow{
			ID:            d.ID,
			UploaderID:    d.UploaderID,
			Type:          ctype,
			InfoID:        d.InfoID,
			ReportID:      derefString(d.ReportID),
			UploadTime:    formatBackendTime(d.UploadTime, loc),
			Processed:     d.Processed,
			ProcessedTime: processedTime,
			Split:         SplitLabel(d.TrainValTest),
			Location:      location,
			StatusID:      derefString(d.StatusID),
		})
	}
	return rows
}
