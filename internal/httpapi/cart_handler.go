package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddLineRequestDTO struct {
	ProductID int64        `json:"product_id"`
	VariantID *string      `json:"variant_id,omitempty"`
	Quantity  int          `json:"quantity"`
	UnitPrice domain.Money `json:"unit_price"`
}

type UpdateQuantityRequestDTO struct {
	VariantID *string `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
}

type CartResponseDTO struct {
	Cart   *domain.Cart      `json:"cart"`
	Totals domain.CartTotals `json:"totals"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	c, err := h.carts.Get(r.Context(), getSessionID(r.Context()))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	totals, err := h.carts.TotalsFor(c)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, status, CartResponseDTO{Cart: c, Totals: totals})
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	err := h.carts.AddLine(r.Context(), getSessionID(r.Context()), domain.CartLine{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	h.respondCart(w, r, http.StatusCreated)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	// quantity zero removes the line
	err = h.carts.UpdateQuantity(r.Context(), getSessionID(r.Context()), productID, req.VariantID, req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	h.respondCart(w, r, http.StatusOK)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var variantID *string
	if v := r.URL.Query().Get("variant_id"); v != "" {
		variantID = &v
	}

	if err := h.carts.RemoveLine(r.Context(), getSessionID(r.Context()), productID, variantID); err != nil {
		handleDomainError(w, err)
		return
	}

	h.respondCart(w, r, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), getSessionID(r.Context())); err != nil {
		handleDomainError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}
