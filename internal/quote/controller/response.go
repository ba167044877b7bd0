package controller

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"devis/internal/dto"
	apperrors "devis/internal/errors"
)

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

// responder holds the JSON writing helpers shared by the controllers.
type responder struct {
	logger *zap.Logger
}

func (c responder) handleUseCaseError(w http.ResponseWriter, traceID string, devisNumber string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, devisNumber, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, devisNumber, http.StatusConflict, "ALREADY_PROCESSED", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, traceID, devisNumber, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if nfe, ok := apperrors.IsNotificationFailedError(err); ok {
		c.writeErrorResponse(w, traceID, nfe.DevisNumber, http.StatusBadGateway, "NOTIFICATION_FAILED",
			"votre demande n'a pas pu être transmise, merci de nous contacter en rappelant le numéro "+nfe.DevisNumber)
		return
	}

	if _, ok := apperrors.IsStorageError(err); ok {
		logger.Error("storage error", zap.String("devisNumber", devisNumber), zap.Error(err))
		c.writeErrorResponse(w, traceID, devisNumber, http.StatusInternalServerError, "STORAGE_ERROR", "the devis store is unavailable")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, devisNumber, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c responder) writeErrorResponse(w http.ResponseWriter, traceID string, devisNumber string, statusCode int, code string, message string) {
	response := dto.ErrorResponse{
		TraceID:     traceID,
		Status:      statusCode,
		Code:        code,
		Message:     message,
		DevisNumber: devisNumber,
		Timestamp:   time.Now().UTC(),
	}

	c.writeJSON(w, statusCode, response)
}

func (c responder) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}

	c.writeJSON(w, http.StatusBadRequest, response)
}

func (c responder) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

// decodeJSON reads at most limit bytes of JSON into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(body).Decode(dst)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
