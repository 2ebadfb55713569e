// backend/src/handlers/account_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/models"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/services"
	"github.com/username/splitledger/backend/src/shares"
	"github.com/username/splitledger/backend/src/utils"
)

type AccountHandler struct {
	accountService services.AccountService
	groupService   services.GroupService
}

func NewAccountHandler(accountService services.AccountService, groupService services.GroupService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		groupService:   groupService,
	}
}

type AccountRequest struct {
	Type        models.AccountType `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	DateInfo    string             `json:"date_info"`
}

// requireMembership resolves the authenticated user and the groupID URL
// parameter, ensuring the user belongs to the group. A false return means a
// response has already been written.
func requireMembership(w http.ResponseWriter, r *http.Request, groupService services.GroupService) (userID, groupID int64, ok bool) {
	userID, hasUser := GetUserIDFromContext(r.Context())
	if !hasUser {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return 0, 0, false
	}
	groupID, err := parseIDParam(r, "groupID")
	if err != nil {
		utils.SendJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return 0, 0, false
	}
	isMember, err := groupService.IsMember(userID, groupID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to check group membership", "error", err)
		utils.SendJSONError(w, "Failed to check group membership", http.StatusInternalServerError)
		return 0, 0, false
	}
	if !isMember {
		utils.SendJSONError(w, "Not a member of this group", http.StatusForbidden)
		return 0, 0, false
	}
	return userID, groupID, true
}

func (h *AccountHandler) validateRequest(w http.ResponseWriter, req *AccountRequest) bool {
	req.Name = validation.SanitizeUserInput(req.Name)
	req.Description = validation.SanitizeUserInput(req.Description)

	if req.Type != models.AccountTypePersonal && req.Type != models.AccountTypeClearing {
		utils.SendJSONError(w, "Account type must be 'personal' or 'clearing'", http.StatusBadRequest)
		return false
	}
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		utils.SendJSONError(w, "Account name cannot be empty", http.StatusBadRequest)
		return false
	}
	if err := validation.ValidateStringMaxLength(req.Name, validation.MaxNameLength, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validation.ValidateStringMaxLength(req.Description, validation.MaxDescriptionLength, "description"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	// Date info only applies to clearing (event) accounts.
	if req.Type == models.AccountTypePersonal {
		req.DateInfo = ""
	} else if req.DateInfo != "" {
		if _, err := validation.ValidateDateString(req.DateInfo, "date_info"); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return false
		}
	}
	return true
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !h.validateRequest(w, &req) {
		return
	}

	account := &models.Account{
		GroupID:     groupID,
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		DateInfo:    req.DateInfo,
	}
	if err := h.accountService.CreateAccount(account); err != nil {
		respondServiceError(w, r, err, "Failed to create account")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(groupID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list accounts")
		return
	}

	// Optional candidate filtering for the share selection widgets.
	filter := shares.CandidateFilter{
		Editable: true,
		Search:   r.URL.Query().Get("search"),
	}
	for _, raw := range strings.Split(r.URL.Query().Get("exclude"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "Invalid exclude parameter", http.StatusBadRequest)
			return
		}
		filter.Exclude = append(filter.Exclude, id)
	}

	utils.WriteJSON(w, http.StatusOK, shares.Candidates(accounts, nil, filter))
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	accountID, err := parseIDParam(r, "accountID")
	if err != nil {
		utils.SendJSONError(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	existing, err := h.accountService.GetAccount(groupID, accountID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load account")
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// The account type is fixed at creation.
	req.Type = existing.Type
	if !h.validateRequest(w, &req) {
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.DateInfo = req.DateInfo
	if err := h.accountService.UpdateAccount(existing); err != nil {
		respondServiceError(w, r, err, "Failed to update account")
		return
	}
	utils.WriteJSON(w, http.StatusOK, existing)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	accountID, err := parseIDParam(r, "accountID")
	if err != nil {
		utils.SendJSONError(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	if err := h.accountService.DeleteAccount(groupID, accountID); err != nil {
		respondServiceError(w, r, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
