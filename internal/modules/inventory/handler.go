package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/low-stock", h.lowStock) // ?threshold=...
		r.Post("/products/{id}/restock", h.restock)
		r.Post("/products/{id}/adjust", h.adjust)
		r.Put("/products/{id}/stock", h.setStock)
	})
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

func statusFor(err error) int {
	if errors.Is(err, ErrInvalidQuantity) {
		return http.StatusBadRequest
	}
	return catalog.StatusFor(err)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "threshold must be an integer"})
			return
		}
		threshold = n
	}
	items, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Restock)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Adjust)
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.SetStock)
}

type stockOp func(ctx context.Context, id uuid.UUID, qty int) (*Movement, error)

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op stockOp) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var body quantityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m, err := op(r.Context(), id, body.Quantity)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, m)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
