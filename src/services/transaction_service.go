// backend/src/services/transaction_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/splitledger/backend/src/database"
	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/models"
	"github.com/username/splitledger/backend/src/processors"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/shares"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

type transactionServiceImpl struct {
	positionProcessor processors.PositionProcessor
	summaryCache      *cache.Cache
}

func NewTransactionService(positionProcessor processors.PositionProcessor, summaryCache *cache.Cache) TransactionService {
	return &transactionServiceImpl{
		positionProcessor: positionProcessor,
		summaryCache:      summaryCache,
	}
}

func summaryCacheKey(transactionID int64) string {
	return fmt.Sprintf("summary:%d", transactionID)
}

func (s *transactionServiceImpl) CreateTransaction(transaction *models.Transaction) error {
	now := time.Now().UTC().Format(time.RFC3339)
	transaction.IsWip = true
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	result, err := database.DB.Exec(`
		INSERT INTO transactions
			(group_id, type, name, description, value, currency_symbol, billed_at,
			 debitor_shares, creditor_shares, is_wip, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		transaction.GroupID, transaction.Type, transaction.Name, transaction.Description,
		transaction.Value.String(), transaction.CurrencySymbol, transaction.BilledAt,
		transaction.DebitorShares, transaction.CreditorShares, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	transaction.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}
	logger.L.Info("Transaction created", "transactionID", transaction.ID, "groupID", transaction.GroupID)
	return nil
}

func (s *transactionServiceImpl) GetTransaction(groupID, transactionID int64) (*models.Transaction, error) {
	var t models.Transaction
	err := database.DB.QueryRow(`
		SELECT id, group_id, type, name, description, value, currency_symbol, billed_at,
		       debitor_shares, creditor_shares, is_wip, created_at, updated_at
		FROM transactions WHERE id = ? AND group_id = ?`, transactionID, groupID).
		Scan(&t.ID, &t.GroupID, &t.Type, &t.Name, &t.Description, &t.Value, &t.CurrencySymbol,
			&t.BilledAt, &t.DebitorShares, &t.CreditorShares, &t.IsWip, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %d: %w", transactionID, err)
	}

	positions, err := s.loadPositions(transactionID)
	if err != nil {
		return nil, err
	}
	t.Positions = positions
	return &t, nil
}

func (s *transactionServiceImpl) ListTransactions(groupID int64) ([]models.Transaction, error) {
	rows, err := database.DB.Query(`
		SELECT id, group_id, type, name, description, value, currency_symbol, billed_at,
		       debitor_shares, creditor_shares, is_wip, created_at, updated_at
		FROM transactions
		WHERE group_id = ?
		ORDER BY billed_at DESC, id DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for group %d: %w", groupID, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.GroupID, &t.Type, &t.Name, &t.Description, &t.Value,
			&t.CurrencySymbol, &t.BilledAt, &t.DebitorShares, &t.CreditorShares,
			&t.IsWip, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *transactionServiceImpl) UpdateTransaction(transaction *models.Transaction) error {
	existing, err := s.GetTransaction(transaction.GroupID, transaction.ID)
	if err != nil {
		return err
	}
	if !existing.IsWip {
		return ErrTransactionFinalized
	}

	transaction.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err = database.DB.Exec(`
		UPDATE transactions
		SET name = ?, description = ?, value = ?, currency_symbol = ?, billed_at = ?,
		    debitor_shares = ?, creditor_shares = ?, updated_at = ?
		WHERE id = ? AND group_id = ?`,
		transaction.Name, transaction.Description, transaction.Value.String(),
		transaction.CurrencySymbol, transaction.BilledAt,
		transaction.DebitorShares, transaction.CreditorShares, transaction.UpdatedAt,
		transaction.ID, transaction.GroupID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", transaction.ID, err)
	}
	s.InvalidateSummaryCache(transaction.ID)
	return nil
}

// CommitTransaction validates all positions of a draft and finalizes it.
// Validation errors are returned keyed by position ID; the transaction stays
// a draft when any position is invalid.
func (s *transactionServiceImpl) CommitTransaction(groupID, transactionID int64) (validation.ValidationErrors, error) {
	transaction, err := s.GetTransaction(groupID, transactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.IsWip {
		return nil, ErrTransactionFinalized
	}

	validationErrors := validation.ValidatePositions(transaction.Positions)
	if len(validationErrors) > 0 {
		logger.L.Info("Transaction commit rejected by validation",
			"transactionID", transactionID, "invalidPositions", len(validationErrors))
		return validationErrors, validation.ErrPositionsInvalid
	}

	_, err = database.DB.Exec(`
		UPDATE transactions SET is_wip = 0, updated_at = ? WHERE id = ? AND group_id = ?`,
		time.Now().UTC().Format(time.RFC3339), transactionID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction %d: %w", transactionID, err)
	}

	s.InvalidateSummaryCache(transactionID)
	logger.L.Info("Transaction committed", "transactionID", transactionID, "groupID", groupID)
	return nil, nil
}

func (s *transactionServiceImpl) AddPosition(groupID, transactionID int64, position models.Position) (*models.Position, error) {
	if err := s.requireWip(groupID, transactionID); err != nil {
		return nil, err
	}

	result, err := database.DB.Exec(`
		INSERT INTO positions (transaction_id, name, price, communist_shares, usages, deleted)
		VALUES (?, ?, ?, ?, ?, 0)`,
		transactionID, position.Name, position.Price.String(),
		position.CommunistShares.String(), position.Usages)
	if err != nil {
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}
	position.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	position.TransactionID = transactionID

	s.InvalidateSummaryCache(transactionID)
	logger.L.Info("Position added", "positionID", position.ID, "transactionID", transactionID)
	return &position, nil
}

func (s *transactionServiceImpl) UpdatePosition(groupID, transactionID int64, position models.Position) (*models.Position, error) {
	if err := s.requireWip(groupID, transactionID); err != nil {
		return nil, err
	}

	result, err := database.DB.Exec(`
		UPDATE positions SET name = ?, price = ?, communist_shares = ?, usages = ?
		WHERE id = ? AND transaction_id = ? AND deleted = 0`,
		position.Name, position.Price.String(), position.CommunistShares.String(),
		position.Usages, position.ID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update position %d: %w", position.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	position.TransactionID = transactionID

	s.InvalidateSummaryCache(transactionID)
	return &position, nil
}

func (s *transactionServiceImpl) DeletePosition(groupID, transactionID, positionID int64) error {
	if err := s.requireWip(groupID, transactionID); err != nil {
		return err
	}

	result, err := database.DB.Exec(`
		UPDATE positions SET deleted = 1 WHERE id = ? AND transaction_id = ? AND deleted = 0`,
		positionID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete position %d: %w", positionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.InvalidateSummaryCache(transactionID)
	logger.L.Info("Position deleted", "positionID", positionID, "transactionID", transactionID)
	return nil
}

// Summary computes the derived totals and balance effect of a transaction.
// Results are cached until the next mutation of the transaction.
func (s *transactionServiceImpl) Summary(groupID, transactionID int64) (*TransactionSummary, error) {
	if cached, found := s.summaryCache.Get(summaryCacheKey(transactionID)); found {
		if summary, ok := cached.(*TransactionSummary); ok {
			return summary, nil
		}
	}

	transaction, err := s.GetTransaction(groupID, transactionID)
	if err != nil {
		return nil, err
	}

	var mode shares.DisplayMode
	mode.Observe(transaction.DebitorShares)
	mode.Observe(transaction.CreditorShares)

	summary := &TransactionSummary{
		TotalPositionValue:    s.positionProcessor.TotalPositionValue(transaction.Positions),
		SharedValue:           s.positionProcessor.SharedValue(transaction, transaction.Positions),
		BalanceEffect:         s.positionProcessor.BalanceEffect(transaction.Positions),
		ParticipatingAccounts: s.positionProcessor.ParticipatingAccounts(transaction.Positions),
		HasComplexShares:      s.positionProcessor.HaveComplexShares(transaction.Positions),
		AdvancedShareEditing:  mode.Advanced(),
	}

	s.summaryCache.Set(summaryCacheKey(transactionID), summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *transactionServiceImpl) InvalidateSummaryCache(transactionID int64) {
	s.summaryCache.Delete(summaryCacheKey(transactionID))
}

// requireWip ensures the transaction exists in the group and is still a draft.
func (s *transactionServiceImpl) requireWip(groupID, transactionID int64) error {
	var isWip bool
	err := database.DB.QueryRow(`
		SELECT is_wip FROM transactions WHERE id = ? AND group_id = ?`,
		transactionID, groupID).Scan(&isWip)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check transaction %d state: %w", transactionID, err)
	}
	if !isWip {
		return ErrTransactionFinalized
	}
	return nil
}

func (s *transactionServiceImpl) loadPositions(transactionID int64) ([]models.Position, error) {
	rows, err := database.DB.Query(`
		SELECT id, transaction_id, name, price, communist_shares, usages
		FROM positions
		WHERE transaction_id = ? AND deleted = 0
		ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for transaction %d: %w", transactionID, err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.Name, &p.Price, &p.CommunistShares, &p.Usages); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
