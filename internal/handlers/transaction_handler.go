package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mW "github.com/campusmeal/backend/internal/middleware"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

type TransactionHandler struct {
	service   *services.TransactionService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewTransactionHandler(service *services.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type transactionListResponse struct {
	Success      bool                 `json:"success"`
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

type transactionCreatedResponse struct {
	Success     bool               `json:"success"`
	Transaction models.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal    `json:"newBalance"`
}

// ListTransactions queries the transaction log
// @Summary List transactions
// @Description Newest first. Students only see their own account.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Ledger account id"
// @Param type query string false "purchase, recharge or all"
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} transactionListResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := h.service.ParseLimit(q.Get("limit"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	filter := models.TransactionFilter{UserID: q.Get("userId"), Type: q.Get("type"), Limit: limit}
	if p, ok := mW.PrincipalFrom(r.Context()); ok && p.Role == models.RoleStudent {
		if filter.UserID == "" {
			filter.UserID = p.AccountID
		}
		if !p.CanActOn(filter.UserID) {
			forbidden(w)
			return
		}
	}

	txs, err := h.service.Query(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionListResponse{Success: true, Transactions: txs, Total: len(txs)})
}

// CreateTransaction records a purchase or recharge
// @Summary Create transaction
// @Description Posts a purchase or recharge through the ledger. Students may only recharge their own account.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTransactionRequest true "Transaction"
// @Success 201 {object} transactionCreatedResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, err)
		return
	}

	if p, ok := mW.PrincipalFrom(r.Context()); ok && p.Role == models.RoleStudent {
		if req.Type != models.TransactionRecharge || !p.CanActOn(req.UserID) {
			forbidden(w)
			return
		}
	}

	tx, newBalance, err := h.service.Append(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionCreatedResponse{Success: true, Transaction: *tx, NewBalance: newBalance})
}
