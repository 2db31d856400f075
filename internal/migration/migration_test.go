package migration

import (
	"context"
	"testing"

	"github.com/smallbiznis/reviewvault/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, conn))
	require.NoError(t, EnsureSchema(ctx, conn))

	report, err := Verify(ctx, conn)
	require.NoError(t, err)
	assert.True(t, report.OK(), "missing: %v", report.Missing)
	assert.Equal(t, "sqlite", report.Dialect)
	assert.ElementsMatch(t, Tables, report.Tables)
	assert.ElementsMatch(t, Views, report.Views)
	require.NotNil(t, report.ForeignKeysOn)
	assert.True(t, *report.ForeignKeysOn)
	assert.Equal(t, "wal", report.JournalMode)
	assert.Empty(t, report.Exposed)
}

type foreignKey struct {
	Table    string `gorm:"column:table"`
	From     string `gorm:"column:from"`
	To       string `gorm:"column:to"`
	OnDelete string `gorm:"column:on_delete"`
}

func foreignKeys(t *testing.T, conn *gorm.DB, table string) []foreignKey {
	t.Helper()
	var keys []foreignKey
	require.NoError(t, conn.Raw("PRAGMA foreign_key_list('" + table + "')").Scan(&keys).Error)
	return keys
}

func TestReviewsReferenceParents(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, conn))

	assert.ElementsMatch(t, []foreignKey{
		{Table: "users", From: "user_id", To: "user_id", OnDelete: "CASCADE"},
		{Table: "businesses", From: "business_id", To: "business_id", OnDelete: "CASCADE"},
	}, foreignKeys(t, conn, "reviews"))
	assert.Empty(t, foreignKeys(t, conn, "businesses"))
	assert.Empty(t, foreignKeys(t, conn, "users"))

	require.NoError(t, conn.Exec(`INSERT INTO businesses (business_id, business_name, total_reviews) VALUES ('b-1', 'Acme', 1)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO users (user_id, total_reviews) VALUES ('u-1', 1)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO reviews (review_id, user_id, business_id, review_date, review_rating)
		VALUES ('r-1', 'u-1', 'b-1', '2024-05-01T00:00:00Z', 5)`).Error)
	require.NoError(t, conn.Exec(`DELETE FROM reviews WHERE review_id = 'r-1'`).Error)

	var parents int64
	require.NoError(t, conn.Raw(`SELECT (SELECT COUNT(*) FROM businesses) + (SELECT COUNT(*) FROM users)`).Scan(&parents).Error)
	assert.EqualValues(t, 2, parents)

	err := conn.Exec(`INSERT INTO reviews (review_id, user_id, business_id, review_date, review_rating)
		VALUES ('r-2', 'u-404', 'b-1', '2024-05-01T00:00:00Z', 5)`).Error
	assert.Error(t, err)
}

func TestVerifyFlagsRawPIIInPublicView(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, conn))

	require.NoError(t, conn.Exec(`DROP VIEW v_reviews_public`).Error)
	require.NoError(t, conn.Exec(`CREATE VIEW v_reviews_public AS
		SELECT r.review_id, u.email_address FROM reviews r JOIN users u ON u.user_id = r.user_id`).Error)

	report, err := Verify(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"email_address"}, report.Exposed)
	assert.False(t, report.OK())

	require.NoError(t, EnsureSchema(ctx, conn))
	report, err = Verify(ctx, conn)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestVerifyReportsMissingObjects(t *testing.T) {
	conn := dbtest.Open(t)

	report, err := Verify(context.Background(), conn)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.ElementsMatch(t, append(append([]string{}, Tables...), Views...), report.Missing)
}

func TestPrivateViewExposesNoRawPII(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, conn))

	require.NoError(t, conn.Exec(`INSERT INTO businesses (business_id, business_name, total_reviews) VALUES ('b-1', 'Acme', 1)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO users (user_id, email_address, email_hash, user_name, user_name_redacted, total_reviews)
		VALUES ('u-1', 'alice@example.com', 'hash', 'Alice', 'A***', 1)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO reviews (review_id, user_id, business_id, review_date, review_rating, review_ip_address, review_ip_redacted)
		VALUES ('r-1', 'u-1', 'b-1', '2024-05-01T00:00:00Z', 5, '10.1.2.3', '10.1.2.0')`).Error)

	var rows []map[string]any
	require.NoError(t, conn.Raw(`SELECT * FROM v_reviews_private`).Scan(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "hash", rows[0]["email_address"])
	assert.Equal(t, "A***", rows[0]["user_name"])
	assert.Equal(t, "10.1.2.0", rows[0]["review_ip_address"])

	rows = nil
	require.NoError(t, conn.Raw(`SELECT * FROM v_reviews_public`).Scan(&rows).Error)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "email_address")
	assert.NotContains(t, rows[0], "review_ip_address")
}
