// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/splitledger/backend/src/models"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/services"
	"github.com/username/splitledger/backend/src/utils"
)

type TransactionHandler struct {
	transactionService services.TransactionService
	groupService       services.GroupService
}

func NewTransactionHandler(transactionService services.TransactionService, groupService services.GroupService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		groupService:       groupService,
	}
}

type TransactionRequest struct {
	Type           models.TransactionType `json:"type"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Value          decimal.Decimal        `json:"value"`
	CurrencySymbol string                 `json:"currency_symbol"`
	BilledAt       string                 `json:"billed_at"`
	DebitorShares  models.ShareMap        `json:"debitor_shares"`
	CreditorShares models.ShareMap        `json:"creditor_shares"`
}

func (h *TransactionHandler) validateRequest(w http.ResponseWriter, req *TransactionRequest) bool {
	req.Name = validation.SanitizeUserInput(req.Name)
	req.Description = validation.SanitizeUserInput(req.Description)

	if req.Type != models.TransactionTypePurchase && req.Type != models.TransactionTypeTransfer {
		utils.SendJSONError(w, "Transaction type must be 'purchase' or 'transfer'", http.StatusBadRequest)
		return false
	}
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		utils.SendJSONError(w, "Transaction name cannot be empty", http.StatusBadRequest)
		return false
	}
	if err := validation.ValidateDecimal(req.Value, "value", true); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if _, err := validation.ValidateDateString(req.BilledAt, "billed_at"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	for _, shares := range []models.ShareMap{req.DebitorShares, req.CreditorShares} {
		for _, weight := range shares {
			if !weight.IsPositive() {
				utils.SendJSONError(w, "Share weights must be positive", http.StatusBadRequest)
				return false
			}
		}
	}
	return true
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !h.validateRequest(w, &req) {
		return
	}

	transaction := &models.Transaction{
		GroupID:        groupID,
		Type:           req.Type,
		Name:           req.Name,
		Description:    req.Description,
		Value:          req.Value,
		CurrencySymbol: req.CurrencySymbol,
		BilledAt:       req.BilledAt,
		DebitorShares:  req.DebitorShares,
		CreditorShares: req.CreditorShares,
	}
	if err := h.transactionService.CreateTransaction(transaction); err != nil {
		respondServiceError(w, r, err, "Failed to create transaction")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}

	transactions, err := h.transactionService.ListTransactions(groupID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list transactions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	transaction, err := h.transactionService.GetTransaction(groupID, transactionID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load transaction")
		return
	}
	utils.WriteJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !h.validateRequest(w, &req) {
		return
	}

	transaction := &models.Transaction{
		ID:             transactionID,
		GroupID:        groupID,
		Type:           req.Type,
		Name:           req.Name,
		Description:    req.Description,
		Value:          req.Value,
		CurrencySymbol: req.CurrencySymbol,
		BilledAt:       req.BilledAt,
		DebitorShares:  req.DebitorShares,
		CreditorShares: req.CreditorShares,
	}
	if err := h.transactionService.UpdateTransaction(transaction); err != nil {
		respondServiceError(w, r, err, "Failed to update transaction")
		return
	}
	utils.WriteJSON(w, http.StatusOK, transaction)
}

// CommitTransaction finalizes a draft. Position validation failures are
// returned with 422 and the per-position error structure for display.
func (h *TransactionHandler) CommitTransaction(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	validationErrors, err := h.transactionService.CommitTransaction(groupID, transactionID)
	if err != nil {
		if errors.Is(err, validation.ErrPositionsInvalid) {
			utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":             "one or more positions are invalid",
				"validation_errors": validationErrors,
			})
			return
		}
		respondServiceError(w, r, err, "Failed to commit transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTransactionSummary returns the derived totals and per-account balance
// effect of a transaction's positions.
func (h *TransactionHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	_, groupID, ok := requireMembership(w, r, h.groupService)
	if !ok {
		return
	}
	transactionID, err := parseIDParam(r, "transactionID")
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	summary, err := h.transactionService.Summary(groupID, transactionID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to compute transaction summary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
