package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps, err := h.Catalog.List(r.Context(), catalog.ListQuery{
		Keyword: q.Get("keyword"),
		Column:  q.Get("column"),
		Sort:    q.Get("sort"),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": ps})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", catalog.ErrInvalidID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())
	var np catalog.NewProduct
	if err := decode(r, &np); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Catalog.Create(r.Context(), owner, np)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": p})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())
	id, err := pathID(r, "id", catalog.ErrInvalidID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var c catalog.Changes
	if err := decode(r, &c); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Catalog.Update(r.Context(), owner, id, c)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	owner, _ := auth.UserID(r.Context())
	id, err := pathID(r, "id", catalog.ErrInvalidID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	p, err := h.Catalog.Delete(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeInfo(w, http.StatusOK, "Removed product "+p.Name)
}
