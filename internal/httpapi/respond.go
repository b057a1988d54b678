// Package httpapi exposes the storefront over HTTP: cart editing, checkout
// intent/confirmation and order retrieval, all keyed by the caller's session.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/processor"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps domain errors to HTTP status codes.
func handleDomainError(w http.ResponseWriter, err error) {
	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		details := append(append([]string(nil), vErr.Shipping.Errors...), vErr.Billing.Errors...)
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "address validation failed",
			Code:    "validation_failed",
			Details: strings.Join(details, "; "),
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrAttemptInFlight):
		respondError(w, http.StatusConflict, "attempt_in_flight", err.Error())
	case errors.Is(err, checkout.ErrAttemptFinished):
		respondError(w, http.StatusConflict, "attempt_finished", err.Error())
	case errors.Is(err, checkout.ErrNoIntent):
		respondError(w, http.StatusConflict, "no_intent", err.Error())
	// access denial and a missing order answer identically: no probing for ids
	case errors.Is(err, order.ErrAccessDenied), errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, cart.ErrLineNotFound), errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, processor.ErrIntentNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "payment processor unavailable, try again shortly")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
