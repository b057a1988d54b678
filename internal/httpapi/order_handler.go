package httpapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/grant"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders *order.Service
	grants grant.Store
}

func NewOrderHandler(orders *order.Service, grants grant.Store) *OrderHandler {
	return &OrderHandler{orders: orders, grants: grants}
}

type OrderResponseDTO struct {
	Order domain.Order `json:"order"`
}

// GET /api/v1/orders/{order_id}
//
// Anonymous orders require the bearer token handed out at intent creation,
// either as ?token=, an Authorization: Bearer header, or the session's stored
// grant. Signed-in owners need no token. The order service stays the access
// authority; the grant store only supplies the token and is cleaned up after
// its first successful use.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	sessionID := getSessionID(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	fromGrant := false
	if token == "" {
		if stored, errGrant := h.grants.Get(ctx, sessionID, orderID); errGrant == nil {
			token = stored
			fromGrant = true
		}
	}

	found, err := h.orders.VerifyAccess(ctx, orderID, token, getUserID(ctx))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	if fromGrant {
		if errDel := h.grants.Delete(ctx, sessionID, orderID); errDel != nil {
			log.Printf("delete used grant for order %v: %v", orderID, errDel)
		}
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{Order: found})
}
