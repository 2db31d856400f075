package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/reviewvault/internal/clock"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
)

// ReasonColumn is appended to the source header in quarantine artifacts.
const ReasonColumn = "__reason__"

const (
	quarantineStamp = "20060102_150405"
	// attempts at a free name before giving up
	quarantineAttempts = 100
)

type quarantineWriter struct {
	dir   string
	clock clock.Clock
}

// Write stores every rejected row of one file in a single CSV named after the
// file and its fingerprint: the original header plus ReasonColumn, with original
// cell values and the row's errors joined by "; ". An existing artifact is never
// overwritten.
func (q quarantineWriter) Write(sourceFile, sum string, header []string, rows []ingestdomain.RejectedRow) (string, error) {
	if err := os.MkdirAll(q.dir, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	name := slug.Make(stem)
	if name == "" {
		name = "source"
	}
	if len(sum) > 8 {
		sum = sum[:8]
	}
	if sum != "" {
		name += "_" + sum
	}
	name += "_" + q.clock.Now().UTC().Format(quarantineStamp)

	f, path, err := q.create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	out := append(append(make([]string, 0, len(header)+1), header...), ReasonColumn)
	if err := w.Write(out); err != nil {
		return "", fmt.Errorf("write quarantine: %w", err)
	}
	for _, row := range rows {
		line := make([]string, 0, len(header)+1)
		for _, col := range header {
			line = append(line, row.Raw[col])
		}
		line = append(line, strings.Join(row.Errors, "; "))
		if err := w.Write(line); err != nil {
			return "", fmt.Errorf("write quarantine: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write quarantine: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close quarantine file: %w", err)
	}
	return path, nil
}

func (q quarantineWriter) create(name string) (*os.File, string, error) {
	for i := 1; i <= quarantineAttempts; i++ {
		file := name + "_bad_rows.csv"
		if i > 1 {
			file = fmt.Sprintf("%s_%d_bad_rows.csv", name, i)
		}
		path := filepath.Join(q.dir, file)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create quarantine file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create quarantine file: no free name for %s", name)
}
