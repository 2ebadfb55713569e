package models

import "github.com/shopspring/decimal"

// TransactionType describes the kind of transaction within a group.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction aggregates a total value, default debitor/creditor shares and a
// list of positions. While IsWip is true the transaction is an editable draft;
// once committed it becomes a read-only record.
type Transaction struct {
	ID             int64           `json:"id"`
	GroupID        int64           `json:"group_id"`
	Type           TransactionType `json:"type"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Value          decimal.Decimal `json:"value"`
	CurrencySymbol string          `json:"currency_symbol"`
	BilledAt       string          `json:"billed_at"` // YYYY-MM-DD
	DebitorShares  ShareMap        `json:"debitor_shares"`
	CreditorShares ShareMap        `json:"creditor_shares"`
	IsWip          bool            `json:"is_wip"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`

	// Positions is populated by the service layer when the full transaction
	// is requested; it is not stored on the transaction row itself.
	Positions []Position `json:"positions,omitempty"`
}

// Position is a single line item of a transaction. Usages assigns weighted
// shares of the price to individual accounts; CommunistShares is the weight of
// the part that is split evenly among the accounts using this position.
type Position struct {
	ID              int64           `json:"id"`
	TransactionID   int64           `json:"transaction_id,omitempty"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"` // may be negative for corrections
	CommunistShares decimal.Decimal `json:"communist_shares"`
	Usages          ShareMap        `json:"usages"`
}

// WithDetails returns a copy of the position with name, price and communist
// shares replaced. No validation is performed here.
func (p Position) WithDetails(name string, price, communistShares decimal.Decimal) Position {
	result := p
	result.Name = name
	result.Price = price
	result.CommunistShares = communistShares
	result.Usages = p.Usages.Clone()
	return result
}

// WithUsage returns a copy of the position with the account's usage weight
// replaced, following the same copy-on-write discipline as ShareMap.WithShare.
func (p Position) WithUsage(accountID int64, weight decimal.Decimal) Position {
	result := p
	result.Usages = p.Usages.WithShare(accountID, weight)
	return result
}

// BalanceEffect is the derived per-account monetary attribution of a
// transaction. Only the positions component is computed by this backend;
// it is recomputed from the positions on every read, never stored.
type BalanceEffect struct {
	Positions decimal.Decimal `json:"positions"`
}
