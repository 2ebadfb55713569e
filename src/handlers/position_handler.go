// backend/src/handlers/position_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/splitledger/backend/src/models"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/services"
	"github.com/username/splitledger/backend/src/utils"
)

type PositionHandler struct {
	transactionService services.TransactionService
	groupService       services.GroupService
}

func NewPositionHandler(transactionService services.TransactionService, groupService services.GroupService) *PositionHandler {
	return &PositionHandler{
		transactionService: transactionService,
		groupService:       groupService,
	}
}

type PositionRequest struct {
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CommunistShares decimal.Decimal `json:"communist_shares"`
	Usages          models.ShareMap `json:"usages"`
}

// Only the sanitizers run here; per-field validation happens at commit time
// and is reported through the validation-error structure so the client can
// keep editing a draft with invalid intermediate states.
func (req *PositionRequest) toPosition(id int64) models.Position {
	usages := models.ShareMap{}
	for accountID, weight := range req.Usages {
		if !weight.IsZero() {
			usages[accountID] = weight
		}
	}
	return models.Position{
		ID:              id,
		Name:            validation.SanitizeUserInput(req.Name),
		Price:           req.Price,
		CommunistShares: req.CommunistShares,
		Usages:          usages,
	}
}

func (h *PositionHandler) resolveIDs(w http.ResponseWriter, r *http.Request) (groupID, transactionID int64, ok bool) {
	_, groupID, ok = requireMembership(w, r, h.groupService)
	if !ok {
		return 0, 0, false
	}
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return groupID, transactionID, true
}

func (h *PositionHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	groupID, transactionID, ok := h.resolveIDs(w, r)
	if !ok {
		return
	}

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	position, err := h.transactionService.AddPosition(groupID, transactionID, req.toPosition(0))
	if err != nil {
		respondServiceError(w, r, err, "Failed to add position")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, position)
}

func (h *PositionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	groupID, transactionID, ok := h.resolveIDs(w, r)
	if !ok {
		return
	}
	positionID, err := parseIDParam(r, "positionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid position ID", http.StatusBadRequest)
		return
	}

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	position, err := h.transactionService.UpdatePosition(groupID, transactionID, req.toPosition(positionID))
	if err != nil {
		respondServiceError(w, r, err, "Failed to update position")
		return
	}
	utils.WriteJSON(w, http.StatusOK, position)
}

func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	groupID, transactionID, ok := h.resolveIDs(w, r)
	if !ok {
		return
	}
	positionID, err := parseIDParam(r, "positionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid position ID", http.StatusBadRequest)
		return
	}

	if err := h.transactionService.DeletePosition(groupID, transactionID, positionID); err != nil {
		respondServiceError(w, r, err, "Failed to delete position")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
