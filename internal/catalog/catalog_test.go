package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{
		"review_id", "user_id", "business_id", "review_date", "review_rating",
		"review_title", "review_content", "review_ip_address",
		"email_address", "user_name", "reviewer_country", "business_name",
		"source_file", "source_row",
	}, c.Names())
	assert.Equal(t, []string{"review_ip_address", "email_address", "user_name"}, c.Sensitive())
}

func TestOrder(t *testing.T) {
	got := Default().Order([]string{"extra_b", "user_id", "review_id", "extra_a", "review_rating"})
	assert.Equal(t, []string{"review_id", "user_id", "review_rating", "extra_b", "extra_a"}, got)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	_, err := Parse([]byte("columns:\n  - name: a\n    pii: secret\n"))
	require.Error(t, err)

	_, err = Parse([]byte("columns:\n  - name: a\n    pii: none\n  - name: a\n    pii: none\n"))
	require.Error(t, err)

	_, err = Parse([]byte("columns: ["))
	require.Error(t, err)
}
