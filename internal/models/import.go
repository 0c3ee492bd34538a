package models

import (
	"database/sql"
	"time"
)

// Import job lifecycle statuses. A job created by detect starts out staged;
// resuming it flips it to consumed exactly once. Jobs created by the import
// step move imported -> validated -> applied.
const (
	JobStatusStaged    = "staged"
	JobStatusConsumed  = "consumed"
	JobStatusImported  = "imported"
	JobStatusValidated = "validated"
	JobStatusApplied   = "applied"
	JobStatusFailed    = "failed"
)

type ImportJob struct {
	ID           int            `db:"id" json:"id"`
	JobCode      string         `db:"job_code" json:"job_code"`
	OrgID        int            `db:"org_id" json:"org_id"`
	TemplateKey  string         `db:"template_key" json:"template_key"`
	SourceFile   string         `db:"source_file" json:"source_file"`
	Status       string         `db:"status" json:"status"`
	TotalRows    int            `db:"total_rows" json:"total_rows"`
	ValidRows    int            `db:"valid_rows" json:"valid_rows"`
	InvalidRows  int            `db:"invalid_rows" json:"invalid_rows"`
	AppliedRows  int            `db:"applied_rows" json:"applied_rows"`
	SkippedRows  int            `db:"skipped_rows" json:"skipped_rows"`
	ErrorMessage sql.NullString `db:"error_message" json:"error_message"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ImportRow is one persisted unit of work. RawPayload is the original record
// as decoded from the file; NormalizedPayload is the mapping-applied record,
// absent when the mapping produced no fields. Both are stored as JSON text.
type ImportRow struct {
	ID                int64          `db:"id" json:"id"`
	JobCode           string         `db:"job_code" json:"job_code"`
	RowNumber         int            `db:"row_num" json:"row_number"`
	RawPayload        string         `db:"raw_payload" json:"raw_payload"`
	NormalizedPayload sql.NullString `db:"normalized_payload" json:"normalized_payload"`
	IsValid           bool           `db:"is_valid" json:"is_valid"`
	ValidationError   string         `db:"validation_error" json:"validation_error"`
	IsApplied         bool           `db:"is_applied" json:"is_applied"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// ValidationSummary is the outcome of validating a job. Partial success is
// the normal case, not an error.
type ValidationSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	InvalidRows int `json:"invalid_rows"`
}

// ApplySummary is the outcome of applying the valid subset of a job.
type ApplySummary struct {
	AppliedRows int `json:"applied_rows"`
	SkippedRows int `json:"skipped_rows"`
}

// DetectResult is the round-trip state handed back to the caller after the
// detect phase: a pointer to the staged job plus the proposed mapping.
type DetectResult struct {
	Step            string            `json:"step"`
	JobCode         string            `json:"job_code"`
	TemplateKey     string            `json:"template_key"`
	SourceFile      string            `json:"source_file"`
	TotalRows       int               `json:"total_rows"`
	DetectedColumns []string          `json:"detected_columns"`
	ProposedMapping map[string]string `json:"proposed_mapping"`
}

// ImportResult summarizes a completed import for the operator.
type ImportResult struct {
	JobCode     string `json:"job_code"`
	TemplateKey string `json:"template_key"`
	SourceFile  string `json:"source_file"`
	TotalRows   int    `json:"total_rows"`
	ValidRows   int    `json:"valid_rows"`
	InvalidRows int    `json:"invalid_rows"`
	AppliedRows int    `json:"applied_rows"`
	SkippedRows int    `json:"skipped_rows"`
	DedupedRows int    `json:"deduped_rows"`
	Applied     bool   `json:"applied"`
}
