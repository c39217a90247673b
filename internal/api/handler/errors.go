package handler

import (
	"encoding/json"
	"errors"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"net/http"
)

type ErrorCode string

const (
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidRole       ErrorCode = "INVALID_ROLE"
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeDirectoryDisabled ErrorCode = "DIRECTORY_DISABLED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// errBadRequest marks malformed request input detected by a handler
var errBadRequest = errors.New("bad request")

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func WriteError(w http.ResponseWriter, err error, logger *logger.Logger) {
	status, response := mapError(err)

	if status < http.StatusInternalServerError {
		logger.Warn("request rejected",
			"error", err.Error(),
			"code", response.Error.Code,
		)
	} else {
		logger.Error("unexpected error",
			"error", err.Error(),
		)
	}

	writeJSON(w, status, response, logger)
}

func mapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorBody(CodeNotFound, err.Error())

	case errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusBadRequest, errorBody(CodeInvalidRole, err.Error())

	case errors.Is(err, domain.ErrInvalidRoster),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorBody(CodeValidationFailed, err.Error())

	case errors.Is(err, domain.ErrDirectoryDisabled):
		return http.StatusNotFound, errorBody(CodeDirectoryDisabled, err.Error())

	default:
		return http.StatusInternalServerError, errorBody(CodeInternal, "internal server error")
	}
}

func errorBody(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
