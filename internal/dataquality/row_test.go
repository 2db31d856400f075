package dataquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/reviewvault/internal/record"
)

func validRaw() record.Raw {
	return record.Raw{
		ColReviewID:        "r-1",
		ColReviewerID:      " u-1 ",
		ColBusinessID:      "b-1",
		ColReviewRating:    "4.0",
		ColReviewDate:      "2024-10-17T10:43:39+0200",
		ColEmailAddress:    "alice@example.com",
		ColReviewIPAddress: "10.1.2.3",
		ColReviewerName:    "Alice",
		ColReviewerCountry: "DE",
		ColBusinessName:    "Acme",
		ColReviewTitle:     "Great",
		ColReviewContent:   "  ",
	}
}

func TestValidateRowValid(t *testing.T) {
	ok, errs, n := ValidateRow(validRaw())

	assert.True(t, ok)
	assert.Empty(t, errs)
	assert.Equal(t, "r-1", n.ReviewID)
	assert.Equal(t, "u-1", n.UserID)
	assert.Equal(t, "2024-10-17T08:43:39Z", n.ReviewDate)
	require.NotNil(t, n.ReviewRating)
	assert.Equal(t, 4, *n.ReviewRating)
	require.NotNil(t, n.EmailAddress)
	assert.Equal(t, "alice@example.com", *n.EmailAddress)
	require.NotNil(t, n.BusinessName)
	assert.Equal(t, "Acme", *n.BusinessName)
	assert.Nil(t, n.ReviewContent, "blank optional values are absent")
	assert.Empty(t, n.SourceFile)
}

func TestValidateRowFlagsInvalidValues(t *testing.T) {
	raw := record.Raw{
		ColReviewID:        " ",
		ColReviewerID:      "u-1",
		ColBusinessID:      "b-1",
		ColReviewRating:    "7",
		ColReviewDate:      "not-a-date",
		ColEmailAddress:    "not-an-email",
		ColReviewIPAddress: "999.999.0.1",
	}

	ok, errs, n := ValidateRow(raw)

	assert.False(t, ok)
	assert.Equal(t, []string{
		"Review Id is null/empty",
		`Review Rating invalid: "7"`,
		`Review Date unparsable: "not-a-date"`,
		`Email Address invalid: "not-an-email"`,
		`Review IP Address invalid: "999.999.0.1"`,
	}, errs)

	// still normalized for quarantine review
	fields := n.Map()
	assert.Contains(t, fields, record.FieldReviewID)
	assert.Contains(t, fields, record.FieldReviewRating)
	assert.Contains(t, fields, record.FieldReviewDate)
	require.NotNil(t, n.ReviewRating)
	assert.Equal(t, 7, *n.ReviewRating)
	assert.Empty(t, n.ReviewDate)
}

func TestValidateRowMissingColumns(t *testing.T) {
	ok, errs, _ := ValidateRow(record.Raw{})

	assert.False(t, ok)
	assert.Equal(t, []string{
		"missing required column: Review Id",
		"missing required column: Reviewer Id",
		"missing required column: Business Id",
		"missing required column: Review Rating",
		"missing required column: Review Date",
		"Review Id is null/empty",
		"Reviewer Id is null/empty",
		"Business Id is null/empty",
		"Review Rating invalid: null",
		"Review Date unparsable: null",
	}, errs)
}

func TestValidateRowOptionalColumnsAbsent(t *testing.T) {
	raw := validRaw()
	delete(raw, ColEmailAddress)
	delete(raw, ColReviewIPAddress)
	raw[ColReviewerName] = ""

	ok, errs, n := ValidateRow(raw)

	assert.True(t, ok)
	assert.Empty(t, errs)
	assert.Nil(t, n.EmailAddress)
	assert.Nil(t, n.ReviewIPAddress)
	assert.Nil(t, n.UserName)
}

func TestValidateRowRatingBounds(t *testing.T) {
	for rating, valid := range map[string]bool{"1": true, "5": true, "5.99": true, "0": false, "0.5": false, "6": false, "x": false} {
		raw := validRaw()
		raw[ColReviewRating] = rating
		ok, _, _ := ValidateRow(raw)
		assert.Equal(t, valid, ok, rating)
	}
}
