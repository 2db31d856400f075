package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsAddAndValid(t *testing.T) {
	var total Stats
	total.Add(Stats{RowsIn: 2, RowsLoaded: 1, RowsRejected: 1, DQPass: 1, DQFail: 1})
	total.Add(Stats{RowsIn: 3, RowsLoaded: 3, DQPass: 3})

	assert.Equal(t, Stats{RowsIn: 5, RowsLoaded: 4, RowsRejected: 1, DQPass: 4, DQFail: 1}, total)
	assert.True(t, total.Valid())
	assert.True(t, Stats{}.Valid())
	assert.False(t, Stats{RowsIn: 1}.Valid())
}
