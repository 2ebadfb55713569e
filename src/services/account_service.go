// backend/src/services/account_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/splitledger/backend/src/database"
	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/models"
)

type accountServiceImpl struct{}

func NewAccountService() AccountService {
	return &accountServiceImpl{}
}

func (s *accountServiceImpl) CreateAccount(account *models.Account) error {
	result, err := database.DB.Exec(`
		INSERT INTO accounts (group_id, type, name, description, date_info, deleted)
		VALUES (?, ?, ?, ?, ?, 0)`,
		account.GroupID, account.Type, account.Name, account.Description, account.DateInfo)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	account.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}
	logger.L.Info("Account created", "accountID", account.ID, "groupID", account.GroupID, "type", account.Type)
	return nil
}

func (s *accountServiceImpl) ListAccounts(groupID int64) ([]models.Account, error) {
	rows, err := database.DB.Query(`
		SELECT id, group_id, type, name, description, date_info
		FROM accounts
		WHERE group_id = ? AND deleted = 0
		ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for group %d: %w", groupID, err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.GroupID, &a.Type, &a.Name, &a.Description, &a.DateInfo); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *accountServiceImpl) GetAccount(groupID, accountID int64) (*models.Account, error) {
	var a models.Account
	err := database.DB.QueryRow(`
		SELECT id, group_id, type, name, description, date_info
		FROM accounts
		WHERE id = ? AND group_id = ? AND deleted = 0`, accountID, groupID).
		Scan(&a.ID, &a.GroupID, &a.Type, &a.Name, &a.Description, &a.DateInfo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account %d: %w", accountID, err)
	}
	return &a, nil
}

func (s *accountServiceImpl) UpdateAccount(account *models.Account) error {
	result, err := database.DB.Exec(`
		UPDATE accounts SET name = ?, description = ?, date_info = ?
		WHERE id = ? AND group_id = ? AND deleted = 0`,
		account.Name, account.Description, account.DateInfo, account.ID, account.GroupID)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount soft-deletes an account. Share maps referencing the account
// are left untouched: display filtering and map mutation are independent, so
// existing transactions keep their stored weights until explicitly edited.
func (s *accountServiceImpl) DeleteAccount(groupID, accountID int64) error {
	result, err := database.DB.Exec(`
		UPDATE accounts SET deleted = 1 WHERE id = ? AND group_id = ? AND deleted = 0`,
		accountID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete account %d: %w", accountID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	logger.L.Info("Account deleted", "accountID", accountID, "groupID", groupID)
	return nil
}
