package sales

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the sales ledger over HTTP. There are no write routes.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Get("/", h.list) // ?from=&to=&method=
		r.Get("/summary", h.summary)
		r.Get("/export.csv", h.export)
		r.Get("/{id}", h.get)
		r.Get("/{id}/receipt", h.receipt)
		r.Get("/{id}/verify", h.verify)
	})
}

// ParseFilter reads from/to (RFC 3339 or YYYY-MM-DD) and method from q.
// A bare date in "to" is taken as the whole day.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	if raw := q.Get("from"); raw != "" {
		t, _, err := parseTime(raw)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, dateOnly, err := parseTime(raw)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	if raw := q.Get("method"); raw != "" {
		m, err := payment.ParseMethod(raw)
		if err != nil {
			return f, err
		}
		f.Method = m
	}
	return f, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.List(r.Context(), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Sale{}
	}
	respond(w, http.StatusOK, list)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sum, err := h.service.Summary(r.Context(), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, sum)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := h.service.ExportCSV(r.Context(), w, f); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.load(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sale)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RenderReceipt(sale)))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.load(w, r)
	if !ok {
		return
	}
	mismatches := Verify(sale)
	respond(w, http.StatusOK, map[string]interface{}{
		"sale_id":    sale.ID,
		"consistent": len(mismatches) == 0,
		"mismatches": mismatches,
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Sale, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid sale id", http.StatusBadRequest)
		return nil, false
	}
	sale, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrSaleNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return sale, true
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
