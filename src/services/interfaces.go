// backend/src/services/interfaces.go
package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/username/splitledger/backend/src/models"
	"github.com/username/splitledger/backend/src/security/validation"
)

// Define common service errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrTransactionFinalized = errors.New("transaction is already committed and read-only")
	ErrNotGroupMember       = errors.New("user is not a member of this group")
	ErrAccountInUse         = errors.New("account is still referenced by transactions")
)

// TransactionSummary is the derived view of a transaction's positions:
// aggregate totals plus the per-account balance effect. It is recomputed from
// the stored positions on every read and never persisted.
type TransactionSummary struct {
	TotalPositionValue    decimal.Decimal                `json:"total_position_value"`
	SharedValue           decimal.Decimal                `json:"shared_value"`
	BalanceEffect         map[int64]models.BalanceEffect `json:"balance_effect"`
	ParticipatingAccounts []int64                        `json:"participating_accounts"`
	HasComplexShares      bool                           `json:"has_complex_shares"`
	AdvancedShareEditing  bool                           `json:"advanced_share_editing"`
}

// GroupService manages expense groups and their membership.
type GroupService interface {
	CreateGroup(userID int64, name, description, currencySymbol string) (*models.Group, error)
	ListGroups(userID int64) ([]models.Group, error)
	GetGroup(userID, groupID int64) (*models.Group, error)
	IsMember(userID, groupID int64) (bool, error)
}

// AccountService manages the accounts within a group.
type AccountService interface {
	CreateAccount(account *models.Account) error
	ListAccounts(groupID int64) ([]models.Account, error)
	GetAccount(groupID, accountID int64) (*models.Account, error)
	UpdateAccount(account *models.Account) error
	DeleteAccount(groupID, accountID int64) error
}

// TransactionService manages transactions, their positions and the derived
// balance computations.
type TransactionService interface {
	CreateTransaction(transaction *models.Transaction) error
	GetTransaction(groupID, transactionID int64) (*models.Transaction, error)
	ListTransactions(groupID int64) ([]models.Transaction, error)
	UpdateTransaction(transaction *models.Transaction) error
	CommitTransaction(groupID, transactionID int64) (validation.ValidationErrors, error)

	AddPosition(groupID, transactionID int64, position models.Position) (*models.Position, error)
	UpdatePosition(groupID, transactionID int64, position models.Position) (*models.Position, error)
	DeletePosition(groupID, transactionID, positionID int64) error

	Summary(groupID, transactionID int64) (*TransactionSummary, error)
	InvalidateSummaryCache(transactionID int64)
}
