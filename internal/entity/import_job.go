package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// ImportStatus is the lifecycle status of a bulk import job.
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ParseImportStatus maps unrecognised statuses to pending so the job keeps being observed.
func ParseImportStatus(s string) ImportStatus {
	switch st := ImportStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ImportPending, ImportProcessing, ImportCompleted, ImportFailed:
		return st
	default:
		return ImportPending
	}
}

func (s *ImportStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = ImportPending
		return nil
	}
	*s = ParseImportStatus(raw)
	return nil
}

// IsTerminal reports whether the job can no longer change.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportCompleted || s == ImportFailed
}

// IsActive reports whether the job still needs polling.
func (s ImportStatus) IsActive() bool {
	return s == ImportPending || s == ImportProcessing
}

// ImportJob is an asynchronous bulk data import.
type ImportJob struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	Country      string       `json:"country"`
	ReportMonth  *string      `json:"report_month,omitempty"`
	Status       ImportStatus `json:"status"`
	TotalRows    int          `json:"total_rows"`
	ImportedRows int          `json:"imported_rows"`
	SkippedRows  int          `json:"skipped_rows"`
	ErrorRows    int          `json:"error_rows"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}
