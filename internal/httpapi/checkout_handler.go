package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
)

type CheckoutHandler struct {
	manager *checkout.Manager
}

func NewCheckoutHandler(manager *checkout.Manager) *CheckoutHandler {
	return &CheckoutHandler{manager: manager}
}

type IntentRequestDTO struct {
	Customer        domain.Customer `json:"customer"`
	ShippingAddress domain.Address  `json:"shipping_address"`
	BillingAddress  domain.Address  `json:"billing_address"`
	SameAsShipping  bool            `json:"billing_same_as_shipping"`
	CreateAccount   bool            `json:"create_account"`
}

type IntentResponseDTO struct {
	OrderID      string `json:"order_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token,omitempty"`
	Status       string `json:"status"`
}

type ConfirmRequestDTO struct {
	CardToken string `json:"card_token"`
}

type ConfirmResponseDTO struct {
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	OrderID    string `json:"order_id"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// POST /api/v1/checkout/intent
func (h *CheckoutHandler) RequestIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Customer.Email == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "customer email is required")
		return
	}

	co := h.manager.For(getSessionID(r.Context()))
	intent, err := co.RequestIntent(r.Context(), checkout.Request{
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		SameAsShipping:  req.SameAsShipping,
		UserID:          getUserID(r.Context()),
		CreateAccount:   req.CreateAccount,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, IntentResponseDTO{
		OrderID:      intent.OrderID.String(),
		ClientSecret: intent.ClientSecret,
		AccessToken:  intent.AccessToken,
		Status:       co.Status().String(),
	})
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CardToken == "" {
		respondError(w, http.StatusBadRequest, "missing_card_token", "card_token is required")
		return
	}

	co := h.manager.For(getSessionID(r.Context()))
	outcome, err := co.ConfirmManual(r.Context(), checkout.CardDetails{Token: req.CardToken})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConfirmResponseDTO{
		Status:     outcome.Status.String(),
		Reason:     outcome.Reason,
		OrderID:    outcome.OrderID.String(),
		RedirectTo: outcome.RedirectTo,
	})
}
