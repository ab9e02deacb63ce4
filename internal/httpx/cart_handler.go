package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-marketplace/internal/auth"
)

type cartReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	items, err := h.Carts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if len(items) == 0 {
		writeInfo(w, http.StatusOK, "Cart is empty")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": items})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var req cartReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	items, err := h.Carts.Add(r.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cart": items})
}

func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var req cartReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	items, err := h.Carts.Update(r.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": items})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var req cartReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if _, err := h.Carts.Remove(r.Context(), id, req.ProductID); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeInfo(w, http.StatusOK, "Removed product from cart")
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	if err := h.Carts.Clear(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeInfo(w, http.StatusOK, "Emptied cart")
}
