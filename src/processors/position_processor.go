// backend/src/processors/position_processor.go
package processors

import (
	"github.com/shopspring/decimal"

	"github.com/username/splitledger/backend/src/models"
)

// PositionProcessor derives per-account monetary effects and account sets
// from the positions of a transaction. All operations are pure; monetary
// arithmetic uses fixed-precision decimals throughout.
type PositionProcessor interface {
	ParticipatingAccounts(positions []models.Position) []int64
	EffectiveAccounts(transaction *models.Transaction, positions []models.Position, extraAccounts []int64) []int64
	TotalPositionValue(positions []models.Position) decimal.Decimal
	SharedValue(transaction *models.Transaction, positions []models.Position) decimal.Decimal
	BalanceEffect(positions []models.Position) map[int64]models.BalanceEffect
	HaveComplexShares(positions []models.Position) bool
}

type positionProcessorImpl struct{}

func NewPositionProcessor() PositionProcessor {
	return &positionProcessorImpl{}
}

// ParticipatingAccounts returns the deduplicated union of usage keys across
// all positions, in first-seen order. Keys within one position are visited in
// ascending ID order so the result is deterministic.
func (p *positionProcessorImpl) ParticipatingAccounts(positions []models.Position) []int64 {
	seen := make(map[int64]bool)
	var result []int64
	for _, position := range positions {
		for _, accountID := range sortedAccountIDs(position.Usages) {
			if !seen[accountID] {
				seen[accountID] = true
				result = append(result, accountID)
			}
		}
	}
	return result
}

// EffectiveAccounts returns all accounts taking part in the transaction:
// debitor-share accounts, position participants and any accounts explicitly
// added during editing, deduplicated in first-seen order.
func (p *positionProcessorImpl) EffectiveAccounts(transaction *models.Transaction, positions []models.Position, extraAccounts []int64) []int64 {
	seen := make(map[int64]bool)
	var result []int64
	appendUnique := func(accountID int64) {
		if !seen[accountID] {
			seen[accountID] = true
			result = append(result, accountID)
		}
	}
	if transaction != nil {
		for _, accountID := range sortedAccountIDs(transaction.DebitorShares) {
			appendUnique(accountID)
		}
	}
	for _, accountID := range p.ParticipatingAccounts(positions) {
		appendUnique(accountID)
	}
	for _, accountID := range extraAccounts {
		appendUnique(accountID)
	}
	return result
}

// TotalPositionValue sums all position prices.
func (p *positionProcessorImpl) TotalPositionValue(positions []models.Position) decimal.Decimal {
	total := decimal.Zero
	for _, position := range positions {
		total = total.Add(position.Price)
	}
	return total
}

// SharedValue is the part of the transaction value not covered by positions.
// It may be negative when positions over-account the total; that is a valid,
// displayable state.
func (p *positionProcessorImpl) SharedValue(transaction *models.Transaction, positions []models.Position) decimal.Decimal {
	return transaction.Value.Sub(p.TotalPositionValue(positions))
}

// BalanceEffect distributes each position's price across its usage accounts.
// With U the total usage weight and C the communist weight of a position:
//   - U+C == 0: the position contributes nothing (defensive no-op).
//   - Each usage account receives price * usage/(U+C).
//   - The communist portion price * C/(U+C) is split evenly among the accounts
//     with nonzero usage in that position; with no such accounts it is dropped.
//
// Per-account contributions aggregate by decimal summation across positions.
func (p *positionProcessorImpl) BalanceEffect(positions []models.Position) map[int64]models.BalanceEffect {
	effects := make(map[int64]decimal.Decimal)
	for _, position := range positions {
		usageTotal := position.Usages.TotalWeight()
		denominator := usageTotal.Add(position.CommunistShares)
		if denominator.IsZero() {
			continue
		}

		recipients := make([]int64, 0, len(position.Usages))
		for accountID, weight := range position.Usages {
			if weight.IsZero() {
				continue
			}
			effects[accountID] = effects[accountID].Add(position.Price.Mul(weight).Div(denominator))
			recipients = append(recipients, accountID)
		}

		if position.CommunistShares.IsZero() || len(recipients) == 0 {
			continue
		}
		communistPortion := position.Price.Mul(position.CommunistShares).Div(denominator)
		perRecipient := communistPortion.Div(decimal.NewFromInt(int64(len(recipients))))
		for _, accountID := range recipients {
			effects[accountID] = effects[accountID].Add(perRecipient)
		}
	}

	result := make(map[int64]models.BalanceEffect, len(effects))
	for accountID, amount := range effects {
		result[accountID] = models.BalanceEffect{Positions: amount}
	}
	return result
}

// HaveComplexShares reports whether any position carries a usage or communist
// weight outside {0, 1}, in which case a checkbox rendering is not faithful.
func (p *positionProcessorImpl) HaveComplexShares(positions []models.Position) bool {
	one := decimal.NewFromInt(1)
	for _, position := range positions {
		if !position.CommunistShares.IsZero() && !position.CommunistShares.Equal(one) {
			return true
		}
		for _, weight := range position.Usages {
			if !weight.IsZero() && !weight.Equal(one) {
				return true
			}
		}
	}
	return false
}
