// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/smallbiznis/reviewvault/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns a fresh file-backed SQLite store under t.TempDir, closed on
// cleanup. Foreign keys are enforced.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := db.Open(db.Config{
		Type: db.TypeSQLite,
		Path: filepath.Join(t.TempDir(), "reviewvault.db"),
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
