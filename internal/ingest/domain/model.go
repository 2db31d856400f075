package domain

import (
	"time"

	"github.com/smallbiznis/reviewvault/internal/dataquality"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	"github.com/smallbiznis/reviewvault/internal/record"
	"github.com/smallbiznis/reviewvault/internal/stage"
)

// FileStatus is the terminal state of one file.
type FileStatus string

const (
	FileSkipped   FileStatus = "SKIPPED"
	FileCompleted FileStatus = "COMPLETED"
)

// RejectedRow is a row bound for quarantine.
type RejectedRow struct {
	Line   int
	Raw    record.Raw
	Errors []string
}

// Latency summarizes per-row upsert latency within one file.
type Latency struct {
	Count int64         `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// FileResult is the outcome of processing one file. Skipped files carry zero
// stats and no rows.
type FileResult struct {
	Path           string
	SHA256         string
	Status         FileStatus
	Stats          auditdomain.Stats
	Rows           []record.Normalized
	QuarantinePath string
	Expectations   dataquality.Report
	Latency        Latency
}

type RunRequest struct {
	Globs     []string
	StagePath string
}

// FileFailure records a file that failed fatally when the run continues past
// failures.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type RunResult struct {
	RunID        string            `json:"run_id"`
	// Files counts every discovered file, failed ones included.
	Files        int               `json:"files"`
	SkippedFiles int               `json:"skipped_files"`
	FailedFiles  int               `json:"failed_files"`
	Failures     []FileFailure     `json:"failures,omitempty"`
	Stats        auditdomain.Stats `json:"stats"`
	StageRows    int               `json:"stage_rows_written"`
	StagePath    string            `json:"stage_path"`
	StageOutcome stage.Outcome     `json:"stage_outcome,omitempty"`
	MetricsRows  int64             `json:"metrics_rows"`
	Duration     time.Duration     `json:"duration"`
}

// RowIssue lists the failures of one source row.
type RowIssue struct {
	Line   int      `json:"line"`
	Errors []string `json:"errors"`
}

// CheckResult is an offline data-quality report for one file.
type CheckResult struct {
	Path         string             `json:"path"`
	Rows         int                `json:"rows"`
	Valid        int                `json:"valid"`
	Invalid      int                `json:"invalid"`
	Duplicates   []int              `json:"duplicate_lines"`
	Issues       []RowIssue         `json:"issues"`
	Expectations dataquality.Report `json:"expectations"`
}
