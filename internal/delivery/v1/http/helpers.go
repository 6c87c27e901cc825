package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stockwatch-tech/go-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrMissingInventoryItem):
		return http.StatusBadRequest, e.ErrMissingInventoryItem.Error()
	case errors.Is(err, e.ErrInvalidQuantity):
		return http.StatusBadRequest, e.ErrInvalidQuantity.Error()
	case errors.Is(err, e.ErrInvalidSignature):
		return http.StatusUnauthorized, e.ErrInvalidSignature.Error()
	case errors.Is(err, e.ErrUnknownWebhookType):
		return http.StatusNotFound, e.ErrUnknownWebhookType.Error()
	case errors.Is(err, e.ErrUnknownShop):
		return http.StatusNotFound, e.ErrUnknownShop.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrSyncAlreadyRunning):
		return http.StatusConflict, e.ErrSyncAlreadyRunning.Error()
	case errors.Is(err, e.ErrNoLocations):
		return http.StatusUnprocessableEntity, e.ErrNoLocations.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
