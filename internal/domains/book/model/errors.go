package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"elib-backend/internal/shared/response"
	"elib-backend/pkg/logger"
)

var (
	ErrInvalidBookID = errors.New("a valid book id is required")
	ErrBookNotFound  = errors.New("book not found")
	ErrNotOwner      = errors.New("you can not modify another user's book")
	ErrUploadFailed  = errors.New("error while uploading the files")
)

var bookErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrInvalidBookID: {
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "A valid book id is required",
	},
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Book not found",
	},
	ErrNotOwner: {
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: "You can not modify another user's book",
	},
	ErrUploadFailed: {
		Status:  http.StatusInternalServerError,
		Code:    "UPLOAD_FAILED",
		Message: "Error while uploading the files",
	},
}

// HandleBookError converts a service error into an HTTP response.
// Returns true when a response was written.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verr validation.Errors
	if errors.As(err, &verr) {
		response.BadRequest(c, err.Error())
		return true
	}

	for sentinel, cfg := range bookErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, cfg.Status, cfg.Code, cfg.Message)
			return true
		}
	}

	logger.Error("book operation failed", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
