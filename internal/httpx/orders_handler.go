package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/orders"
)

type quantityReq struct {
	Quantity int `json:"quantity"`
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	d, err := h.Orders.CreateFromCart(r.Context(), buyer)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) checkoutProduct(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	productID, err := pathID(r, "product_id", catalog.ErrInvalidID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var req quantityReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Orders.CreateFromProduct(r.Context(), buyer, productID, req.Quantity)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	list, err := h.Orders.ListOrders(r.Context(), buyer)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	orderID, err := pathID(r, "order_id", orders.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Orders.GetOrder(r.Context(), buyer, orderID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	orderID, err := pathID(r, "order_id", orders.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Orders.CancelOrder(r.Context(), buyer, orderID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) cancelOrderProduct(w http.ResponseWriter, r *http.Request) {
	buyer, _ := auth.UserID(r.Context())
	orderID, productID, err := orderLineIDs(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	l, err := h.Orders.CancelOrderProduct(r.Context(), buyer, orderID, productID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// setOrderStatus applies a vendor action to every line the vendor has in the
// order. Only shipped and disputed may be requested.
func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	vendor, _ := auth.UserID(r.Context())
	orderID, err := pathID(r, "order_id", orders.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	target, err := decodeTarget(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var d orders.Detail
	if target == orders.StatusShipped {
		d, err = h.Orders.ShipOrder(r.Context(), vendor, orderID)
	} else {
		d, err = h.Orders.DisputeOrder(r.Context(), vendor, orderID)
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) setLineStatus(w http.ResponseWriter, r *http.Request) {
	vendor, _ := auth.UserID(r.Context())
	orderID, productID, err := orderLineIDs(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	target, err := decodeTarget(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var v orders.LineView
	if target == orders.StatusShipped {
		v, err = h.Orders.ShipOrderProduct(r.Context(), vendor, orderID, productID)
	} else {
		v, err = h.Orders.DisputeOrderProduct(r.Context(), vendor, orderID, productID)
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) pendingFulfillment(w http.ResponseWriter, r *http.Request) {
	vendor, _ := auth.UserID(r.Context())
	es, err := h.Fulfillment.Pending(r.Context(), vendor)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending": es})
}

func decodeTarget(r *http.Request) (orders.Status, error) {
	var req statusReq
	if err := decode(r, &req); err != nil {
		return "", err
	}
	return orders.ParseTarget(req.Status)
}

func orderLineIDs(r *http.Request) (orderID, productID int64, err error) {
	if orderID, err = pathID(r, "order_id", orders.ErrOrderNotFound); err != nil {
		return 0, 0, err
	}
	if productID, err = pathID(r, "product_id", orders.ErrProductNotInOrder); err != nil {
		return 0, 0, err
	}
	return orderID, productID, nil
}
