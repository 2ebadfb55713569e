package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/splitledger/backend/src/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBalanceEffectEvenSplit(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{{
		ID:    1,
		Price: dec("10"),
		Usages: models.ShareMap{
			1: dec("1"),
			2: dec("1"),
		},
	}}

	effect := p.BalanceEffect(positions)
	require.Len(t, effect, 2)
	assert.True(t, effect[1].Positions.Equal(dec("5")))
	assert.True(t, effect[2].Positions.Equal(dec("5")))
}

func TestBalanceEffectCommunistShare(t *testing.T) {
	p := NewPositionProcessor()
	// U=1, C=1: the single usage account gets 9*(1/2) directly plus the full
	// communist portion 9*(1/2) as its sole eligible recipient.
	positions := []models.Position{{
		ID:              1,
		Price:           dec("9"),
		CommunistShares: dec("1"),
		Usages:          models.ShareMap{1: dec("1")},
	}}

	effect := p.BalanceEffect(positions)
	require.Len(t, effect, 1)
	assert.True(t, effect[1].Positions.Equal(dec("9")))
}

func TestBalanceEffectCommunistSplitAmongUsers(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{{
		ID:              1,
		Price:           dec("12"),
		CommunistShares: dec("2"),
		Usages: models.ShareMap{
			1: dec("1"),
			2: dec("1"),
		},
	}}

	// Denominator is 4: each usage account gets 3 directly, and the 6 of
	// communist portion splits 3/3.
	effect := p.BalanceEffect(positions)
	require.Len(t, effect, 2)
	assert.True(t, effect[1].Positions.Equal(dec("6")))
	assert.True(t, effect[2].Positions.Equal(dec("6")))
}

func TestBalanceEffectNoEligibleCommunistRecipients(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{{
		ID:              1,
		Price:           dec("10"),
		CommunistShares: dec("2"),
		Usages:          models.ShareMap{},
	}}

	assert.Empty(t, p.BalanceEffect(positions))
}

func TestBalanceEffectZeroTotalWeight(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{{ID: 1, Price: dec("10")}}

	assert.Empty(t, p.BalanceEffect(positions))
}

func TestBalanceEffectDistributesExactlyThePrice(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{{
		ID:              1,
		Price:           dec("10"),
		CommunistShares: dec("1"),
		Usages: models.ShareMap{
			1: dec("2"),
			2: dec("1"),
			3: dec("1"),
		},
	}}

	effect := p.BalanceEffect(positions)
	total := decimal.Zero
	for _, e := range effect {
		total = total.Add(e.Positions)
	}
	diff := total.Sub(dec("10")).Abs()
	assert.True(t, diff.LessThan(dec("0.0000000001")), "expected total ~10, got %s", total)
}

func TestBalanceEffectAggregatesAcrossPositions(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{
		{ID: 1, Price: dec("10"), Usages: models.ShareMap{1: dec("1")}},
		{ID: 2, Price: dec("4.50"), Usages: models.ShareMap{1: dec("1"), 2: dec("2")}},
	}

	effect := p.BalanceEffect(positions)
	assert.True(t, effect[1].Positions.Equal(dec("11.5")))
	assert.True(t, effect[2].Positions.Equal(dec("3")))
}

func TestBalanceEffectNegativePrice(t *testing.T) {
	p := NewPositionProcessor()
	// Negative prices (corrections) distribute the same way.
	positions := []models.Position{{
		ID:     1,
		Price:  dec("-6"),
		Usages: models.ShareMap{1: dec("1"), 2: dec("2")},
	}}

	effect := p.BalanceEffect(positions)
	assert.True(t, effect[1].Positions.Equal(dec("-2")))
	assert.True(t, effect[2].Positions.Equal(dec("-4")))
}

func TestTotalPositionValueOrderInvariant(t *testing.T) {
	p := NewPositionProcessor()
	a := models.Position{ID: 1, Price: dec("0.10")}
	b := models.Position{ID: 2, Price: dec("0.20")}
	c := models.Position{ID: 3, Price: dec("-0.05")}

	forward := p.TotalPositionValue([]models.Position{a, b, c})
	backward := p.TotalPositionValue([]models.Position{c, b, a})

	assert.True(t, forward.Equal(dec("0.25")))
	assert.True(t, forward.Equal(backward))
}

func TestSharedValue(t *testing.T) {
	p := NewPositionProcessor()
	transaction := &models.Transaction{Value: dec("100")}
	positions := []models.Position{
		{ID: 1, Price: dec("30")},
		{ID: 2, Price: dec("20")},
	}

	assert.True(t, p.SharedValue(transaction, positions).Equal(dec("50")))
}

func TestSharedValueMayBeNegative(t *testing.T) {
	p := NewPositionProcessor()
	transaction := &models.Transaction{Value: dec("10")}
	positions := []models.Position{{ID: 1, Price: dec("25")}}

	assert.True(t, p.SharedValue(transaction, positions).Equal(dec("-15")))
}

func TestParticipatingAccounts(t *testing.T) {
	p := NewPositionProcessor()
	positions := []models.Position{
		{ID: 1, Usages: models.ShareMap{3: dec("1"), 1: dec("1")}},
		{ID: 2, Usages: models.ShareMap{2: dec("1"), 3: dec("1")}},
	}

	// Deduplicated, first-seen across positions, ascending within a position.
	assert.Equal(t, []int64{1, 3, 2}, p.ParticipatingAccounts(positions))
}

func TestEffectiveAccounts(t *testing.T) {
	p := NewPositionProcessor()
	transaction := &models.Transaction{
		DebitorShares: models.ShareMap{5: dec("1"), 2: dec("1")},
	}
	positions := []models.Position{
		{ID: 1, Usages: models.ShareMap{2: dec("1"), 7: dec("1")}},
	}

	result := p.EffectiveAccounts(transaction, positions, []int64{9, 7})
	assert.Equal(t, []int64{2, 5, 7, 9}, result)
}

func TestHaveComplexShares(t *testing.T) {
	p := NewPositionProcessor()

	simple := []models.Position{{
		ID:              1,
		CommunistShares: dec("1"),
		Usages:          models.ShareMap{1: dec("1")},
	}}
	assert.False(t, p.HaveComplexShares(simple))

	weightedUsage := []models.Position{{
		ID:     1,
		Usages: models.ShareMap{1: dec("2")},
	}}
	assert.True(t, p.HaveComplexShares(weightedUsage))

	weightedCommunist := []models.Position{{
		ID:              1,
		CommunistShares: dec("0.5"),
	}}
	assert.True(t, p.HaveComplexShares(weightedCommunist))
}
