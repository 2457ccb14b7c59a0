package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
)

// Raw backend shapes, decoded strictly at this boundary. Nullable backend
// fields are pointers; everything downstream works on the normalized models.

type reportRecordResponse struct {
	ID          string   `json:"_id"`
	CreatedDate string   `json:"createdDate"`
	DataImgID   *string  `json:"dataImgID"`
	DataTextID  *string  `json:"dataTextID"`
	Eval        float64  `json:"eval"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Qualified   *bool    `json:"qualified"`
	SegmentID   string   `json:"segmentID"`
	StatusID    *string  `json:"statusID"`
	UploaderID  string   `json:"uploaderID"`
}

type dataItemResponse struct {
	ID            string  `json:"_id"`
	UploaderID    string  `json:"uploaderID"`
	Type          string  `json:"type"`
	InfoID        string  `json:"InfoID"`
	ReportID      *string `json:"reportID"`
	UploadTime    string  `json:"uploadTime"`
	Processed     bool    `json:"processed"`
	ProcessedTime *string `json:"processed_time"`
	TrainValTest  int     `json:"TrainValTest"`
	Location      *string `json:"location"`
	StatusID      *string `json:"statusID"`
}

type reportPageResponse struct {
	Data  []reportRecordResponse `json:"data"`
	Total int                    `json:"total"`
}

type dataPageResponse struct {
	Data  []dataItemResponse `json:"data"`
	Total int                `json:"total"`
}

// DetailContent is the lazily fetched content of one data item, plus its
// processing metadata.
type DetailContent struct {
	Content struct {
		Content string `json:"content"`
	} `json:"content"`
	Image *struct {
		ContentType string `json:"contentType"`
	} `json:"image"`
	Data *struct {
		Processed     bool    `json:"processed"`
		ProcessedTime *string `json:"processed_time"`
	} `json:"data"`
	Status *struct {
		Statuses struct {
			ObstaclesFlag  bool `json:"ObstaclesFlag"`
			FloodedFlag    bool `json:"FloodedFlag"`
			TrafficJamFlag bool `json:"TrafficJamFlag"`
			PoliceFlag     bool `json:"PoliceFlag"`
		} `json:"statuses"`
	} `json:"status"`
}

// ManualVerifyRequest is the moderator decision payload.
type ManualVerifyRequest struct {
	ID     string      `json:"id"`
	Valid  bool        `json:"valid"`
	Status VerifyFlags `json:"status"`
}

type trainValTestRequest struct {
	ID    string `json:"_id"`
	Value string `json:"value"`
}

// ReportView selects which report listing endpoint to query.
type ReportView string

const (
	ReportAll         ReportView = "all"
	ReportUnqualified ReportView = "unqualified"
	ReportValid       ReportView = "valid"
	ReportInvalid     ReportView = "invalid"
	ReportNeeded      ReportView = "needed"
)

func reportPath(view ReportView) string {
	switch view {
	case ReportUnqualified:
		return "/report/notQualified"
	case ReportValid:
		return "/report/valid"
	case ReportInvalid:
		return "/report/invalid"
	case ReportNeeded:
		return "/report/neededValidation"
	}
	return "/report/"
}

// DataView selects which data listing endpoint to query.
type DataView string

const (
	DataAll   DataView = "all"
	DataImage DataView = "image"
	DataText  DataView = "text"
)

func dataPath(view DataView) string {
	switch view {
	case DataImage:
		return "/data/img"
	case DataText:
		return "/data/text"
	}
	return "/data/"
}

// Backend is the typed client for the moderation REST API.
type Backend struct {
	baseURL string
	session *Session
}

func NewBackend(baseURL string, session *Session) *Backend {
	return &Backend{baseURL: baseURL, session: session}
}

func pageQuery(limit, offset int) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))
	return params.Encode()
}

// FetchReports returns one page of report records plus the authoritative
// server-side total.
func (b *Backend) FetchReports(view ReportView, limit, offset int) ([]reportRecordResponse, int, error) {
	apiURL := fmt.Sprintf("%s%s?%s", b.baseURL, reportPath(view), pageQuery(limit, offset))
	body, err := b.session.do("GET", apiURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching reports: %w", err)
	}

	var page reportPageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, 0, fmt.Errorf("parsing report page: %w", err)
	}
	log.Printf("backend reports view=%s fetched=%d total=%d", view, len(page.Data), page.Total)
	return page.Data, page.Total, nil
}

// FetchData returns one page of raw data items plus the server-side total.
func (b *Backend) FetchData(view DataView, limit, offset int) ([]dataItemResponse, int, error) {
	apiURL := fmt.Sprintf("%s%s?%s", b.baseURL, dataPath(view), pageQuery(limit, offset))
	body, err := b.session.do("GET", apiURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching data items: %w", err)
	}

	var page dataPageResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, 0, fmt.Errorf("parsing data page: %w", err)
	}
	log.Printf("backend data view=%s fetched=%d total=%d", view, len(page.Data), page.Total)
	return page.Data, page.Total, nil
}

// FetchDetail returns the content blob and processing metadata for one
// content id.
func (b *Backend) FetchDetail(contentID string) (*DetailContent, error) {
	apiURL := fmt.Sprintf("%s/data/detail/%s", b.baseURL, url.PathEscape(contentID))
	body, err := b.session.do("GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching detail %s: %w", contentID, err)
	}

	var detail DetailContent
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parsing detail %s: %w", contentID, err)
	}
	return &detail, nil
}

// FetchReportDetail returns the raw record for one report id.
func (b *Backend) FetchReportDetail(reportID string) (*reportRecordResponse, error) {
	apiURL := fmt.Sprintf("%s/report/detail/%s", b.baseURL, url.PathEscape(reportID))
	body, err := b.session.do("GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching report detail %s: %w", reportID, err)
	}

	var record reportRecordResponse
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("parsing report detail %s: %w", reportID, err)
	}
	if record.ID == "" {
		return nil, fmt.Errorf("report detail %s: response missing _id", reportID)
	}
	return &record, nil
}

// ManualVerify submits a moderator decision.
func (b *Backend) ManualVerify(req ManualVerifyRequest) error {
	if _, err := b.session.do("POST", b.baseURL+"/report/manualVerify", req); err != nil {
		return fmt.Errorf("manual verify %s: %w", req.ID, err)
	}
	log.Printf("backend manual verify id=%s valid=%t", req.ID, req.Valid)
	return nil
}

// AssignSplit assigns a train/val/test split label to a data item.
func (b *Backend) AssignSplit(dataID, split string) error {
	req := trainValTestRequest{ID: dataID, Value: split}
	if _, err := b.session.do("PUT", b.baseURL+"/data/trainValTest", req); err != nil {
		return fmt.Errorf("assign split %s: %w", dataID, err)
	}
	log.Printf("backend assign split id=%s value=%s", dataID, split)
	return nil
}
