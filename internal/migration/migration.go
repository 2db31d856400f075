package migration

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/smallbiznis/reviewvault/internal/catalog"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	"gorm.io/gorm"
)

// Tables and views the store must hold.
var (
	Tables = []string{"businesses", "users", "reviews", "metrics_summary", "load_audit"}
	Views  = []string{reviewdomain.ViewPublic, reviewdomain.ViewPrivate}
)

// The private view swaps raw PII for the hashed and redacted columns under the
// raw column names; neither view selects email_address, user_name or the raw IP.
var viewDDL = []struct {
	name string
	sql  string
}{
	{
		name: reviewdomain.ViewPublic,
		sql: `CREATE VIEW v_reviews_public AS
SELECT
  r.review_id,
  r.business_id,
  r.user_id,
  r.review_date,
  r.review_rating,
  r.review_title,
  r.review_content
FROM reviews r`,
	},
	{
		name: reviewdomain.ViewPrivate,
		sql: `CREATE VIEW v_reviews_private AS
SELECT
  r.review_id,
  r.business_id,
  r.user_id,
  r.review_date,
  r.review_rating,
  r.review_title,
  r.review_content,
  u.email_hash AS email_address,
  u.user_name_redacted AS user_name,
  r.review_ip_redacted AS review_ip_address
FROM reviews r
JOIN users u ON u.user_id = r.user_id`,
	},
}

// EnsureSchema creates or updates every table, index and foreign key, then
// recreates the read projections. It is safe to run repeatedly.
func EnsureSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	db := conn.WithContext(ctx)

	// sqlite rebuilds tables during AutoMigrate and rejects the rebuild while a
	// view still references them
	for _, v := range viewDDL {
		if err := db.Exec("DROP VIEW IF EXISTS " + v.name).Error; err != nil {
			return fmt.Errorf("drop view %s: %w", v.name, err)
		}
	}

	if err := db.AutoMigrate(
		&reviewdomain.Business{},
		&reviewdomain.User{},
		&reviewdomain.Review{},
		&reviewdomain.MetricsSummary{},
		&auditdomain.LoadAudit{},
	); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}

	for _, v := range viewDDL {
		if err := db.Exec(v.sql).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}
	return nil
}

// Report describes the state of the store.
type Report struct {
	Dialect       string   `json:"dialect"`
	ForeignKeysOn *bool    `json:"foreign_keys_on,omitempty"`
	JournalMode   string   `json:"journal_mode,omitempty"`
	Tables        []string `json:"tables"`
	Views         []string `json:"views"`
	Missing       []string `json:"missing"`
	// Exposed lists raw PII columns found in the public projection.
	Exposed []string `json:"exposed,omitempty"`
}

// OK reports whether every expected table and view exists and the public
// projection carries no raw PII column.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Exposed) == 0
}

// Verify inspects the store for the expected objects. On SQLite it also reports
// foreign-key enforcement and the journal mode of the connection.
func Verify(ctx context.Context, conn *gorm.DB) (Report, error) {
	db := conn.WithContext(ctx)
	report := Report{Dialect: db.Dialector.Name(), Tables: []string{}, Views: []string{}, Missing: []string{}}

	migrator := db.Migrator()
	for _, table := range Tables {
		if migrator.HasTable(table) {
			report.Tables = append(report.Tables, table)
		} else {
			report.Missing = append(report.Missing, table)
		}
	}

	views, err := listViews(db)
	if err != nil {
		return Report{}, err
	}
	for _, view := range Views {
		if slices.Contains(views, view) {
			report.Views = append(report.Views, view)
		} else {
			report.Missing = append(report.Missing, view)
		}
	}

	if slices.Contains(report.Views, reviewdomain.ViewPublic) {
		columns, err := viewColumns(db, reviewdomain.ViewPublic)
		if err != nil {
			return Report{}, err
		}
		for _, name := range catalog.Default().Sensitive() {
			if slices.Contains(columns, name) {
				report.Exposed = append(report.Exposed, name)
			}
		}
	}

	if report.Dialect == "sqlite" {
		var fk int
		if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
			return Report{}, fmt.Errorf("read foreign_keys pragma: %w", err)
		}
		on := fk == 1
		report.ForeignKeysOn = &on

		if err := db.Raw("PRAGMA journal_mode").Scan(&report.JournalMode).Error; err != nil {
			return Report{}, fmt.Errorf("read journal_mode pragma: %w", err)
		}
	}
	return report, nil
}

func viewColumns(db *gorm.DB, view string) ([]string, error) {
	rows, err := db.Raw("SELECT * FROM " + view + " WHERE 1 = 0").Rows()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", view, err)
	}
	defer rows.Close()
	return rows.Columns()
}

func listViews(db *gorm.DB) ([]string, error) {
	var (
		names []string
		query string
	)
	switch db.Dialector.Name() {
	case "sqlite":
		query = `SELECT name FROM sqlite_master WHERE type = 'view'`
	case "postgres":
		query = `SELECT table_name FROM information_schema.views WHERE table_schema = CURRENT_SCHEMA()`
	case "mysql":
		query = `SELECT table_name FROM information_schema.views WHERE table_schema = DATABASE()`
	default:
		return nil, fmt.Errorf("list views: unsupported dialect %q", db.Dialector.Name())
	}
	if err := db.Raw(query).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return names, nil
}
