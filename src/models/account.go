package models

// AccountType distinguishes personal accounts from clearing (event) accounts.
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeClearing AccountType = "clearing"
)

// Account represents a participant within a group. Clearing accounts carry
// an optional date info string (e.g., the date of the event they settle).
type Account struct {
	ID          int64       `json:"id"`
	GroupID     int64       `json:"group_id"`
	Type        AccountType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	DateInfo    string      `json:"date_info,omitempty"` // clearing accounts only
	Deleted     bool        `json:"deleted,omitempty"`
}

// Group is the unit of sharing: it owns accounts and transactions.
type Group struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CurrencySymbol string `json:"currency_symbol"`
	CreatedBy      int64  `json:"created_by"`
	CreatedAt      string `json:"created_at"`
}
