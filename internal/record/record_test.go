package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTrimmed(t *testing.T) {
	raw := Raw{"Review Title": "  Great  ", "Review Content": ""}

	require.NotNil(t, raw.Trimmed("Review Title"))
	assert.Equal(t, "Great", *raw.Trimmed("Review Title"))
	assert.Equal(t, "", *raw.Trimmed("Review Content"))
	assert.Nil(t, raw.Trimmed("Email Address"))
}

func TestNormalizedFieldsLineage(t *testing.T) {
	rating := 4
	n := Normalized{ReviewID: "r1", UserID: "u1", BusinessID: "b1", ReviewRating: &rating}

	m := n.Map()
	assert.Equal(t, 4, m[FieldReviewRating])
	assert.Nil(t, m[FieldReviewDate])
	assert.Nil(t, m[FieldEmailAddress])
	_, hasLineage := m[FieldSourceFile]
	assert.False(t, hasLineage)

	tagged := n.WithLineage("reviews.xlsx", 7).Map()
	assert.Equal(t, "reviews.xlsx", tagged[FieldSourceFile])
	assert.Equal(t, 7, tagged[FieldSourceRow])
	assert.Empty(t, n.SourceFile)
}
