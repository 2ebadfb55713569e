// backend/src/handlers/group_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/services"
	"github.com/username/splitledger/backend/src/utils"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreateGroupRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	CurrencySymbol string `json:"currency_symbol"`
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = validation.SanitizeUserInput(req.Name)
	req.Description = validation.SanitizeUserInput(req.Description)
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		utils.SendJSONError(w, "Group name cannot be empty", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Name, validation.MaxNameLength, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.CurrencySymbol == "" {
		req.CurrencySymbol = "€"
	}
	if err := validation.ValidateStringMaxLength(req.CurrencySymbol, validation.MaxCurrencySymLength, "currency_symbol"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name, req.Description, req.CurrencySymbol)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create group", "error", err)
		utils.SendJSONError(w, "Failed to create group", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	groups, err := h.groupService.ListGroups(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list groups", "error", err)
		utils.SendJSONError(w, "Failed to list groups", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	groupID, err := parseIDParam(r, "groupID")
	if err != nil {
		utils.SendJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.GetGroup(userID, groupID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load group")
		return
	}
	utils.WriteJSON(w, http.StatusOK, group)
}

// parseIDParam reads a chi URL parameter as an int64.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondServiceError maps the common service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.SendJSONError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotGroupMember):
		utils.SendJSONError(w, "Not a member of this group", http.StatusForbidden)
	case errors.Is(err, services.ErrTransactionFinalized):
		utils.SendJSONError(w, "Transaction is already committed and read-only", http.StatusConflict)
	default:
		logger.ErrorFromContext(r.Context(), fallback, "error", err)
		utils.SendJSONError(w, fallback, http.StatusInternalServerError)
	}
}
