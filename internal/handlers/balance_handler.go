package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

type BalanceHandler struct {
	ledger    *services.LedgerService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewBalanceHandler(ledger *services.LedgerService, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		ledger:    ledger,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type balanceResponse struct {
	Success bool `json:"success"`
	models.Balance
}

type balanceChangeResponse struct {
	Success bool `json:"success"`
	*models.BalanceChange
}

// GetBalance returns the current balance of a ledger account
// @Summary Get balance
// @Description Current balance of a ledger account; unknown accounts report 0
// @Tags Balance
// @Produce json
// @Security BearerAuth
// @Param userId query string true "Ledger account id"
// @Success 200 {object} balanceResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		services.SendErrorResponse(w, "User ID is required", http.StatusBadRequest, nil)
		return
	}
	if !canAccess(r, userID) {
		forbidden(w)
		return
	}

	b, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{Success: true, Balance: b})
}

// UpdateBalance applies a direct balance adjustment
// @Summary Adjust balance
// @Description Recharge (default) or charge a ledger account. The change is also logged as a transaction.
// @Tags Balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateBalanceRequest true "Balance adjustment"
// @Success 200 {object} balanceChangeResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /balance [post]
func (h *BalanceHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, err)
		return
	}

	kind := req.Type
	if kind == "" {
		kind = models.TransactionRecharge
	}

	change, err := h.ledger.ApplyDelta(r.Context(), req.UserID, *req.Amount, kind)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceChangeResponse{Success: true, BalanceChange: change})
}
