package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

// APIError is the error body returned to the booking frontend.
// swagger:model
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

var errBadRequest = errors.New("malformed request body")

// ToHTTP maps a domain error onto a status and a safe body.
// Unknown errors are 500 and never leak details.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, message := classify(err)
	return status, ErrorResponse{Error: APIError{Code: code, Message: message}}
}

func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_argument", "malformed request body"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "operator token missing or invalid"
	case errors.Is(err, model.ErrMissingFields):
		return http.StatusBadRequest, "missing_fields", "signed fields missing"
	case errors.Is(err, model.ErrInvalidHotelID):
		return http.StatusBadRequest, "invalid_argument", "invalid hotel id"
	case errors.Is(err, model.ErrInvalidOrder):
		return http.StatusBadRequest, "invalid_argument", "invalid checkout order"
	case errors.Is(err, model.ErrEmptyToken):
		return http.StatusBadRequest, "invalid_argument", "access and refresh tokens are required"
	case errors.Is(err, model.ErrHotelNotFound):
		return http.StatusNotFound, "hotel_not_found", "hotel not found"
	case errors.Is(err, model.ErrPromotionNotApplicable):
		return http.StatusNotFound, "promotion_not_applicable", "promo code is not valid for this booking"
	case errors.Is(err, model.ErrSecretMissing):
		return http.StatusInternalServerError, "payment_config", "payment is not configured for this hotel"
	case errors.Is(err, model.ErrNoCredentials):
		return http.StatusUnauthorized, "unauthenticated", "no session"
	case model.IsRefreshFailed(err):
		return http.StatusUnauthorized, "session_expired", "session expired, log in again"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// WriteError writes the mapped status and body, adding the request id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get(requestIDHeader); rid != "" {
		resp.Error.RequestID = rid
	}
	if status >= http.StatusInternalServerError {
		logctx.From(r.Context()).Error("request failed", slog.String("code", resp.Error.Code), slog.Any("err", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict rejects unknown fields.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
