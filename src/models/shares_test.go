package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareMapWithShare(t *testing.T) {
	original := ShareMap{1: decimal.NewFromInt(1)}

	updated := original.WithShare(2, decimal.NewFromFloat(2.5))
	require.Len(t, updated, 2)
	assert.True(t, updated.Weight(2).Equal(decimal.NewFromFloat(2.5)))

	// The input map must remain untouched.
	assert.Len(t, original, 1)
	assert.True(t, original.Weight(2).IsZero())
}

func TestShareMapWithShareZeroRemoves(t *testing.T) {
	m := ShareMap{}

	m = m.WithShare(7, decimal.NewFromInt(3))
	require.Contains(t, m, int64(7))

	m = m.WithShare(7, decimal.Zero)
	assert.NotContains(t, m, int64(7))

	// Removing an absent key is a no-op, not an error.
	m = m.WithShare(7, decimal.Zero)
	assert.Empty(t, m)
}

func TestShareMapToggled(t *testing.T) {
	m := ShareMap{}

	m = m.Toggled(4, true)
	assert.True(t, m.Weight(4).Equal(decimal.NewFromInt(1)))

	m = m.Toggled(4, false)
	assert.NotContains(t, m, int64(4))
}

func TestShareMapTotalWeight(t *testing.T) {
	m := ShareMap{
		1: decimal.NewFromInt(1),
		2: decimal.NewFromFloat(0.5),
		3: decimal.NewFromFloat(2.5),
	}
	assert.True(t, m.TotalWeight().Equal(decimal.NewFromInt(4)))
	assert.True(t, ShareMap{}.TotalWeight().IsZero())
}

func TestShareMapScanValueRoundtrip(t *testing.T) {
	m := ShareMap{1: decimal.NewFromInt(1), 9: decimal.NewFromFloat(1.5)}

	value, err := m.Value()
	require.NoError(t, err)

	var scanned ShareMap
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 2)
	assert.True(t, scanned.Weight(9).Equal(decimal.NewFromFloat(1.5)))
}

func TestPositionWithUsageCopyOnWrite(t *testing.T) {
	position := Position{
		ID:     1,
		Name:   "beer",
		Price:  decimal.NewFromInt(12),
		Usages: ShareMap{1: decimal.NewFromInt(1)},
	}

	updated := position.WithUsage(2, decimal.NewFromInt(2))
	assert.Len(t, position.Usages, 1)
	assert.Len(t, updated.Usages, 2)

	cleared := updated.WithUsage(1, decimal.Zero)
	assert.NotContains(t, cleared.Usages, int64(1))
	assert.Contains(t, updated.Usages, int64(1))
}

func TestPositionWithDetails(t *testing.T) {
	position := Position{
		ID:     3,
		Name:   "old",
		Price:  decimal.NewFromInt(5),
		Usages: ShareMap{1: decimal.NewFromInt(1)},
	}

	updated := position.WithDetails("new", decimal.NewFromFloat(7.5), decimal.NewFromInt(1))
	assert.Equal(t, "new", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.NewFromFloat(7.5)))
	assert.True(t, updated.CommunistShares.Equal(decimal.NewFromInt(1)))

	// Usages are copied, not shared.
	updated.Usages[2] = decimal.NewFromInt(1)
	assert.NotContains(t, position.Usages, int64(2))

	assert.Equal(t, "old", position.Name)
}
