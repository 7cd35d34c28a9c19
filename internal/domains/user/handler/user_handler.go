package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"elib-backend/internal/domains/user"
	"elib-backend/internal/shared/response"
	"elib-backend/pkg/logger"
)

type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Register - POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, token)
}

// Login - POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, token)
}

// UpdateDetails - PATCH /api/users/updateDetails
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	var req user.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateDetails(c.Request.Context(), req); err != nil {
		handleUserError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "user details updated successfully"})
}

func handleUserError(c *gin.Context, err error) {
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("user operation failed", err)
		response.InternalServerError(c, "internal server error")
	}
}
