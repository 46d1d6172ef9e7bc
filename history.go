package clipsave

import (
	"context"
	"time"
)

// HistoryRecord is a log entry derived from one SaveResult.
type HistoryRecord struct {
	ID              string      `json:"id"`
	Strategy        string      `json:"strategy"`
	Title           string      `json:"title"`
	SourceURL       string      `json:"sourceUrl"`
	DestinationPath string      `json:"destinationPath"`
	Succeeded       bool        `json:"succeeded"`
	FailureKind     FailureKind `json:"failureKind"`
	FailureReason   string      `json:"failureReason"`
	AssetCount      int         `json:"assetCount"`
	ContentHash     string      `json:"contentHash"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// NewHistoryRecord builds the record for a finished save. The content hash,
// ID and timestamp are filled in by the HistoryService.
func NewHistoryRecord(sc *SaveContext, strategy string, result *SaveResult) *HistoryRecord {
	r := &HistoryRecord{
		Strategy:        strategy,
		Title:           sc.Title,
		SourceURL:       sc.SourceURL,
		DestinationPath: result.DestinationPath,
		Succeeded:       result.Succeeded,
		FailureKind:     result.FailureKind,
		FailureReason:   result.FailureReason,
		AssetCount:      result.AssetCount,
	}
	if r.DestinationPath == "" {
		r.DestinationPath = sc.DestinationName
	}
	return r
}

// Validate returns an error if the record contains invalid fields.
func (r *HistoryRecord) Validate() error {
	if r.Strategy == "" {
		return Errorf(EINVALID, "history record strategy required")
	}
	if r.DestinationPath == "" {
		return Errorf(EINVALID, "history record destination required")
	}
	return nil
}

// HistoryFilter represents a filter for FindRecords.
type HistoryFilter struct {
	Strategy  *string `json:"strategy"`
	Succeeded *bool   `json:"succeeded"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// HistoryService stores the save history log.
type HistoryService interface {
	// CreateRecord appends a record, assigning its ID and timestamp.
	CreateRecord(ctx context.Context, r *HistoryRecord, content string) error

	// FindRecords returns records matching the filter, newest first.
	FindRecords(ctx context.Context, filter HistoryFilter) ([]*HistoryRecord, error)
}
