package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

type UserHandler struct {
	users     *services.UserService
	cards     *services.CardService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewUserHandler(users *services.UserService, cards *services.CardService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		cards:     cards,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ListUsers returns the directory
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dataResponse{data=[]models.User}
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: users})
}

// CreateUser adds a directory account
// @Summary Create user
// @Description Students get a zero balance and a card number derived from their id
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "New account"
// @Success 201 {object} dataResponse{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), req, actorID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: user})
}

// UpdateUser merges fields onto an account
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateUserRequest true "Account id and changed fields"
// @Success 200 {object} dataResponse{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendValidationError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), req, actorID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: user})
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id query int true "User id"
// @Success 200 {object} dataResponse{data=models.User}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid user ID", http.StatusBadRequest, nil)
		return
	}

	user, err := h.users.Delete(r.Context(), id, actorID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: user})
}

// GetCard looks up a campus card
// @Summary Look up card
// @Description Card holder and live ledger balance, as shown at the till
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param cardNumber path string true "Card number"
// @Success 200 {object} dataResponse{data=models.CardDetails}
// @Failure 404 {object} services.ErrorResponse
// @Router /cards/{cardNumber} [get]
func (h *UserHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.LookupCard(r.Context(), chi.URLParam(r, "cardNumber"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: card})
}
