package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reviewvault/internal/clock"
	"github.com/smallbiznis/reviewvault/internal/config"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	auditrepo "github.com/smallbiznis/reviewvault/internal/loadaudit/repository"
	auditservice "github.com/smallbiznis/reviewvault/internal/loadaudit/service"
	"github.com/smallbiznis/reviewvault/internal/migration"
	"github.com/smallbiznis/reviewvault/internal/observability/metrics"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	reviewrepo "github.com/smallbiznis/reviewvault/internal/review/repository"
	reviewservice "github.com/smallbiznis/reviewvault/internal/review/service"
	"github.com/smallbiznis/reviewvault/internal/stage"
	"github.com/smallbiznis/reviewvault/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var header = []any{
	"Review Id", "Reviewer Id", "Business Id", "Review Rating", "Review Date",
	"Email Address", "Review IP Address", "Reviewer Name",
}

type fixture struct {
	svc     *Service
	reviews reviewdomain.Service
	conn    *gorm.DB
	dir     string
}

func newFixture(t *testing.T, mutate func(*config.Config)) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	require.NoError(t, migration.EnsureSchema(context.Background(), conn))

	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Ingest = config.IngestConfig{
		Globs:          []string{filepath.Join(dir, "raw", "*.xlsx")},
		StagePath:      filepath.Join(dir, "stage", "reviews.parquet"),
		StageFormat:    config.StageFormatParquet,
		QuarantineDir:  filepath.Join(dir, "quarantine"),
		FailFast:       true,
		RebuildMetrics: true,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.Fixed(time.Date(2024, 10, 17, 8, 30, 0, 0, time.UTC))
	m, err := metrics.New(metrics.Config{}, zap.NewNop())
	require.NoError(t, err)

	reviews := reviewservice.NewService(reviewservice.Params{DB: conn, Log: zap.NewNop(), Repo: reviewrepo.Provide()})
	audit := auditservice.NewService(auditservice.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    auditrepo.Provide(),
		Reviews: reviews,
	})
	svc := NewService(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Config:  cfg,
		Clock:   clk,
		Reviews: reviews,
		Audit:   audit,
		Stage:   stage.NewWriter(stage.Params{Config: cfg, Log: zap.NewNop()}),
		Metrics: m,
	})
	return fixture{svc: svc.(*Service), reviews: reviews, conn: conn, dir: dir}
}

func writeWorkbook(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f := excelize.NewFile()
	defer f.Close()
	all := append([][]any{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestProcessFileQuarantinesBadRows(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	path := filepath.Join(fx.dir, "raw", "Reviews Export.xlsx")
	writeWorkbook(t, path,
		[]any{"r-1", "u-1", "b-1", 5, "2024-05-01 12:00:00", "alice@example.com", "1.2.3.4", "Alice"},
		[]any{"r-1", "u-2", "b-1", 4, "2024-05-02", "not-an-email", "999.1.1.1", "Bob"},
	)

	res, err := fx.svc.ProcessFile(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, ingestdomain.FileCompleted, res.Status)
	assert.Equal(t, 2, res.Stats.RowsIn)
	assert.Equal(t, 1, res.Stats.RowsLoaded)
	assert.Equal(t, 1, res.Stats.RowsRejected)
	assert.Equal(t, 1, res.Stats.DQPass)
	assert.Equal(t, 1, res.Stats.DQFail)
	assert.Len(t, res.SHA256, 64)
	assert.False(t, res.Expectations.Success)
	assert.EqualValues(t, 1, res.Latency.Count)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "r-1", res.Rows[0].ReviewID)
	assert.Equal(t, "2024-05-01T12:00:00Z", res.Rows[0].ReviewDate)
	assert.Equal(t, "Reviews Export.xlsx", res.Rows[0].SourceFile)
	assert.Equal(t, 2, res.Rows[0].SourceRow)

	require.NotEmpty(t, res.QuarantinePath)
	assert.Equal(t, "reviews-export_"+res.SHA256[:8]+"_20241017_083000_bad_rows.csv", filepath.Base(res.QuarantinePath))
	records := readCSV(t, res.QuarantinePath)
	require.Len(t, records, 2)
	assert.Equal(t, ReasonColumn, records[0][len(records[0])-1])
	assert.Equal(t, "u-2", records[1][1])
	reason := records[1][len(records[1])-1]
	assert.Contains(t, reason, "Email Address invalid")
	assert.Contains(t, reason, "Review IP Address invalid")
	assert.Contains(t, reason, "Duplicate Review Id within file")

	total, err := fx.reviews.CountReviews(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	entries, err := fx.svc.audit.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].RowsRejected)
	assert.Contains(t, entries[0].Metadata, "expectations")
	assert.Contains(t, entries[0].Metadata, "rejections")
	meta, err := json.Marshal(entries[0].Metadata)
	require.NoError(t, err)
	assert.NotContains(t, string(meta), "not-an-email")
	assert.NotContains(t, string(meta), "999.1.1.1")
}

func TestProcessFileSkipsReingest(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	path := filepath.Join(fx.dir, "raw", "a.xlsx")
	writeWorkbook(t, path,
		[]any{"r-1", "u-1", "b-1", 5, "2024-05-01", "", "", ""},
	)

	first, err := fx.svc.ProcessFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ingestdomain.FileCompleted, first.Status)

	second, err := fx.svc.ProcessFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ingestdomain.FileSkipped, second.Status)
	assert.Zero(t, second.Stats)
	assert.Empty(t, second.Rows)
	assert.Equal(t, first.SHA256, second.SHA256)

	entries, err := fx.svc.audit.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessFileUnreadableWritesNothing(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	path := filepath.Join(fx.dir, "raw", "broken.xlsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := fx.svc.ProcessFile(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xlsx")

	entries, err := fx.svc.audit.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = fx.svc.ProcessFile(ctx, " ")
	assert.ErrorIs(t, err, ingestdomain.ErrEmptyPath)
}

func TestRunAggregatesFilesAndWritesStage(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	writeWorkbook(t, filepath.Join(fx.dir, "raw", "a.xlsx"),
		[]any{"r-1", "u-1", "b-1", 5, "2024-05-01", "alice@example.com", "1.2.3.4", "Alice"},
		[]any{"r-2", "u-1", "b-1", 2, "2024-05-01", "alice@example.com", "1.2.3.4", "Alice"},
	)
	writeWorkbook(t, filepath.Join(fx.dir, "raw", "b.xlsx"),
		[]any{"r-3", "u-2", "b-2", 9, "2024-05-03", "", "", ""},
	)

	res, err := fx.svc.Run(ctx, ingestdomain.RunRequest{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 3, res.Stats.RowsIn)
	assert.Equal(t, 2, res.Stats.RowsLoaded)
	assert.Equal(t, 1, res.Stats.RowsRejected)
	assert.Equal(t, 2, res.StageRows)
	assert.Equal(t, stage.OutcomeWritten, res.StageOutcome)
	assert.FileExists(t, res.StagePath)
	assert.EqualValues(t, 1, res.MetricsRows)

	summaries, err := fx.reviews.ListMetrics(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 2, summaries[0].TotalReviews)

	again, err := fx.svc.Run(ctx, ingestdomain.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, again.SkippedFiles)
	assert.Zero(t, again.Stats)
	assert.Zero(t, again.StageRows)
}

func TestRunFailurePolicy(t *testing.T) {
	setup := func(t *testing.T, failFast bool) fixture {
		fx := newFixture(t, func(cfg *config.Config) { cfg.Ingest.FailFast = failFast })
		raw := filepath.Join(fx.dir, "raw")
		require.NoError(t, os.MkdirAll(raw, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(raw, "a-broken.xlsx"), []byte("garbage"), 0o644))
		writeWorkbook(t, filepath.Join(raw, "b.xlsx"),
			[]any{"r-1", "u-1", "b-1", 5, "2024-05-01", "", "", ""},
		)
		return fx
	}

	t.Run("fail fast", func(t *testing.T) {
		fx := setup(t, true)
		_, err := fx.svc.Run(context.Background(), ingestdomain.RunRequest{})
		require.Error(t, err)

		total, err := fx.reviews.CountReviews(context.Background())
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("continue", func(t *testing.T) {
		fx := setup(t, false)
		res, err := fx.svc.Run(context.Background(), ingestdomain.RunRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.FailedFiles)
		require.Len(t, res.Failures, 1)
		assert.Contains(t, res.Failures[0].Path, "a-broken.xlsx")
		assert.Equal(t, 2, res.Files)
		assert.Equal(t, 1, res.Stats.RowsLoaded)
	})
}

func TestRunRequiresPatterns(t *testing.T) {
	fx := newFixture(t, func(cfg *config.Config) { cfg.Ingest.Globs = nil })
	_, err := fx.svc.Run(context.Background(), ingestdomain.RunRequest{Globs: []string{" "}})
	assert.ErrorIs(t, err, ingestdomain.ErrNoPatterns)
}

func TestProcessFileQuarantinePerFile(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	east := filepath.Join(fx.dir, "raw", "east", "reviews.xlsx")
	west := filepath.Join(fx.dir, "raw", "west", "Reviews.xlsx")
	copyOfEast := filepath.Join(fx.dir, "raw", "north", "reviews.xlsx")
	writeWorkbook(t, east, []any{"r-1", "u-1", "b-1", 7, "2024-05-01"})
	writeWorkbook(t, west, []any{"r-9", "u-9", "b-9", 9, "2024-05-01"})
	writeWorkbook(t, copyOfEast, []any{"r-1", "u-1", "b-1", 7, "2024-05-01"})

	paths := map[string]string{}
	for _, path := range []string{east, west, copyOfEast} {
		res, err := fx.svc.ProcessFile(ctx, path)
		require.NoError(t, err)
		require.NotEmpty(t, res.QuarantinePath)
		paths[path] = res.QuarantinePath
	}

	assert.NotEqual(t, paths[east], paths[west])
	assert.NotEqual(t, paths[east], paths[copyOfEast])

	eastRows := readCSV(t, paths[east])
	require.Len(t, eastRows, 2)
	assert.Equal(t, "r-1", eastRows[1][0])

	westRows := readCSV(t, paths[west])
	require.Len(t, westRows, 2)
	assert.Equal(t, "r-9", westRows[1][0])
}

func TestProcessFileStorageFailureCommitsNothing(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, fx.conn.Exec(`CREATE TRIGGER reject_r2 BEFORE INSERT ON reviews
		WHEN NEW.review_id = 'r-2'
		BEGIN SELECT RAISE(ABORT, 'storage unavailable'); END`).Error)

	path := filepath.Join(fx.dir, "raw", "a.xlsx")
	writeWorkbook(t, path,
		[]any{"r-1", "u-1", "b-1", 5, "2024-05-01"},
		[]any{"r-2", "u-2", "b-2", 4, "2024-05-02"},
	)

	_, err := fx.svc.ProcessFile(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage unavailable")

	for _, table := range []string{"businesses", "users", "reviews", "load_audit"} {
		var n int64
		require.NoError(t, fx.conn.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	done, err := fx.svc.audit.Processed(ctx, nil, path, Fingerprint(data))
	require.NoError(t, err)
	assert.False(t, done)
}
