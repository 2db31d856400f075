// Package stage exports the rows validated in one run to a columnar artifact,
// falling back to CSV when the columnar write fails.
package stage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/smallbiznis/reviewvault/internal/catalog"
	"github.com/smallbiznis/reviewvault/internal/config"
	"github.com/smallbiznis/reviewvault/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrEmptyPath = errors.New("empty_path")

// Outcome tells which artifact a write produced.
type Outcome string

const (
	OutcomeWritten  Outcome = "written"
	OutcomeFallback Outcome = "fallback"
)

// Result describes a completed stage write.
type Result struct {
	Path    string
	Rows    int
	Format  string
	Outcome Outcome
	// Cause is the columnar failure that triggered a fallback.
	Cause error
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type Writer struct {
	format  string
	log     *zap.Logger
	catalog catalog.Catalog
	encode  func(io.Writer, []Row) error
}

func NewWriter(p Params) *Writer {
	return &Writer{
		format:  p.Config.Ingest.StageFormat,
		log:     p.Log.Named("stage.writer"),
		catalog: catalog.Default(),
		encode:  encodeParquet,
	}
}

var Module = fx.Module("stage",
	fx.Provide(NewWriter),
)

// Write exports rows to dest. The parquet artifact is written through a temp
// file and renamed into place; if that fails, or CSV output is configured, the
// rows go to the sibling .csv path instead. Only a failing CSV write is an error.
func (w *Writer) Write(ctx context.Context, rows []record.Normalized, dest string) (Result, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Result{}, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("create stage dir: %w", err)
	}

	if w.format == config.StageFormatCSV {
		return w.writeCSV(rows, SiblingCSV(dest), OutcomeWritten, nil)
	}

	err := w.writeParquet(rows, dest)
	if err == nil {
		return Result{Path: dest, Rows: len(rows), Format: config.StageFormatParquet, Outcome: OutcomeWritten}, nil
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	fallback := SiblingCSV(dest)
	w.log.Warn("parquet stage write failed, writing csv fallback",
		zap.String("path", dest),
		zap.String("fallback", fallback),
		zap.Error(err),
	)
	return w.writeCSV(rows, fallback, OutcomeFallback, err)
}

// SiblingCSV swaps the extension of path for .csv.
func SiblingCSV(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
}

func (w *Writer) writeParquet(rows []record.Normalized, dest string) error {
	staged := make([]Row, len(rows))
	for i, row := range rows {
		staged[i] = FromNormalized(row)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".stage-*.parquet")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := w.encode(tmp, staged); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func encodeParquet(out io.Writer, rows []Row) error {
	pw := parquet.NewGenericWriter[Row](out)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(rows []record.Normalized, path string, outcome Outcome, cause error) (Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("create stage csv: %w", err)
	}
	defer f.Close()

	columns := w.catalog.Order(columnsOf(rows))
	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		return Result{}, fmt.Errorf("write stage csv: %w", err)
	}
	for _, row := range rows {
		values := row.Map()
		line := make([]string, len(columns))
		for i, col := range columns {
			line[i] = cell(values[col])
		}
		if err := cw.Write(line); err != nil {
			return Result{}, fmt.Errorf("write stage csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return Result{}, fmt.Errorf("write stage csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("close stage csv: %w", err)
	}
	return Result{Path: path, Rows: len(rows), Format: config.StageFormatCSV, Outcome: outcome, Cause: cause}, nil
}

// columnsOf lists the keys present across rows in first-seen order.
func columnsOf(rows []record.Normalized) []string {
	var cols []string
	seen := map[string]struct{}{}
	for _, row := range rows {
		for _, f := range row.Fields() {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			cols = append(cols, f.Name)
		}
	}
	return cols
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
