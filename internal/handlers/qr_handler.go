package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mW "github.com/campusmeal/backend/internal/middleware"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

type QRHandler struct {
	service   *services.QRService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewQRHandler(service *services.QRService, logger *zap.Logger) *QRHandler {
	return &QRHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type qrRedeemResponse struct {
	Success bool `json:"success"`
	*models.BalanceChange
	TransactionID string `json:"transactionId"`
}

// GenerateQR issues a one-time payment token for the caller's card
// @Summary Generate QR Code
// @Description One-time QR payment token for the student's ledger account
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{accountId=string} false "Only read when authentication is disabled"
// @Success 200 {object} dataResponse{data=models.QRPaymentToken}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Router /qr/generate [post]
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	var accountID string
	if p, ok := mW.PrincipalFrom(r.Context()); ok {
		accountID = p.AccountID
	} else if r.ContentLength != 0 {
		var req struct {
			AccountID string `json:"accountId"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		accountID = req.AccountID
	}

	if accountID == "" {
		services.SendErrorResponse(w, services.MsgMissingFields, http.StatusBadRequest, nil)
		return
	}

	token, err := h.service.GenerateQRCode(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: token})
}

// RedeemQR charges a scanned QR token
// @Summary Redeem QR Code
// @Description Claims a scanned token and posts the purchase against its account
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RedeemQRRequest true "Scanned token and purchase"
// @Success 200 {object} qrRedeemResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /qr/redeem [post]
func (h *QRHandler) RedeemQR(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemQRRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, err)
		return
	}

	change, err := h.service.Redeem(r.Context(), req.Token, *req.Amount, req.Description, req.Location, actorID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, qrRedeemResponse{Success: true, BalanceChange: change, TransactionID: change.Transaction.ID})
}
