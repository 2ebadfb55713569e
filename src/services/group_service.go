// backend/src/services/group_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/splitledger/backend/src/database"
	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/models"
)

type groupServiceImpl struct{}

func NewGroupService() GroupService {
	return &groupServiceImpl{}
}

func (s *groupServiceImpl) CreateGroup(userID int64, name, description, currencySymbol string) (*models.Group, error) {
	now := time.Now().UTC()

	txDB, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for group creation: %w", err)
	}
	defer txDB.Rollback()

	result, err := txDB.Exec(`
		INSERT INTO groups (name, description, currency_symbol, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		name, description, currencySymbol, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}
	groupID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	// The creator is always a member of the new group.
	if _, err := txDB.Exec(`
		INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
		groupID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to add creator as group member: %w", err)
	}

	if err := txDB.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	logger.L.Info("Group created", "groupID", groupID, "userID", userID)
	return &models.Group{
		ID:             groupID,
		Name:           name,
		Description:    description,
		CurrencySymbol: currencySymbol,
		CreatedBy:      userID,
		CreatedAt:      now.Format(time.RFC3339),
	}, nil
}

func (s *groupServiceImpl) ListGroups(userID int64) ([]models.Group, error) {
	rows, err := database.DB.Query(`
		SELECT g.id, g.name, g.description, g.currency_symbol, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for user %d: %w", userID, err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CurrencySymbol, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *groupServiceImpl) GetGroup(userID, groupID int64) (*models.Group, error) {
	isMember, err := s.IsMember(userID, groupID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotGroupMember
	}

	var g models.Group
	err = database.DB.QueryRow(`
		SELECT id, name, description, currency_symbol, created_by, created_at
		FROM groups WHERE id = ?`, groupID).
		Scan(&g.ID, &g.Name, &g.Description, &g.CurrencySymbol, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group %d: %w", groupID, err)
	}
	return &g, nil
}

func (s *groupServiceImpl) IsMember(userID, groupID int64) (bool, error) {
	var exists int
	err := database.DB.QueryRow(`
		SELECT COUNT(1) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return exists > 0, nil
}
