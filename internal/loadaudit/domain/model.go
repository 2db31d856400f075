package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LoadAudit is the append-only record of one completed file load. The
// (file, sha256) pair is unique, which is what makes re-runs idempotent.
type LoadAudit struct {
	ID           snowflake.ID      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	File         string            `gorm:"column:file;type:varchar(512);not null;uniqueIndex:ux_load_audit_file_sha256,priority:1" json:"file"`
	SHA256       string            `gorm:"column:sha256;type:varchar(64);not null;uniqueIndex:ux_load_audit_file_sha256,priority:2" json:"sha256"`
	RowsIn       int               `gorm:"column:rows_in;not null;default:0" json:"rows_in"`
	RowsLoaded   int               `gorm:"column:rows_loaded;not null;default:0" json:"rows_loaded"`
	RowsRejected int               `gorm:"column:rows_rejected;not null;default:0" json:"rows_rejected"`
	DQPass       int               `gorm:"column:dq_pass;not null;default:0" json:"dq_pass"`
	DQFail       int               `gorm:"column:dq_fail;not null;default:0" json:"dq_fail"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	LoadedAt     time.Time         `gorm:"column:loaded_at;not null" json:"loaded_at"`
}

func (LoadAudit) TableName() string { return "load_audit" }

// Stats are the per-file counters recorded in the audit row.
type Stats struct {
	RowsIn       int `json:"rows_in"`
	RowsLoaded   int `json:"rows_loaded"`
	RowsRejected int `json:"rows_rejected"`
	DQPass       int `json:"dq_pass"`
	DQFail       int `json:"dq_fail"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.RowsIn += o.RowsIn
	s.RowsLoaded += o.RowsLoaded
	s.RowsRejected += o.RowsRejected
	s.DQPass += o.DQPass
	s.DQFail += o.DQFail
}

// Valid reports whether the counters are consistent with each other.
func (s Stats) Valid() bool {
	return s.RowsIn >= 0 &&
		s.RowsLoaded+s.RowsRejected == s.RowsIn &&
		s.DQPass+s.DQFail == s.RowsIn
}
