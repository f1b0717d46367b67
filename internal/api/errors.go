package api

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest            = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrNotFound              = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrInternalServer        = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrValidation            = &AppError{Code: http.StatusBadRequest, Message: "validation error"}
	ErrRetrievalUnavailable  = &AppError{Code: http.StatusServiceUnavailable, Message: "retrieval service unavailable"}
	ErrGenerationUnavailable = &AppError{Code: http.StatusBadGateway, Message: "generation service unavailable"}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	JSONErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
