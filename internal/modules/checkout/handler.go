package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handler exposes checkout sessions over HTTP.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/checkout/sessions", func(r chi.Router) {
		r.Post("/", h.open)
		r.Get("/{id}", h.view) // ?tax_rate=
		r.Delete("/{id}", h.close)
		r.Post("/{id}/lines", h.addLine)
		r.Patch("/{id}/lines/{product_id}", h.adjustLine)
		r.Delete("/{id}/lines/{product_id}", h.removeLine)
		r.Post("/{id}/settle", h.settle)
	})
}

type errorBody struct {
	Error     string     `json:"error"`
	Code      string     `json:"code"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// StatusFor maps checkout errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrSessionBusy), errors.Is(err, ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTaxRate), errors.Is(err, ErrUnsupportedMethod):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Code: Outcome(err)}
	if id, ok := catalog.ProductIDOf(err); ok {
		body.ProductID = &id
	}
	respond(w, StatusFor(err), body)
}

func badRequest(w http.ResponseWriter, msg string) {
	respond(w, http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_request"})
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Open(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, v)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	var rate decimal.NullDecimal
	if raw := r.URL.Query().Get("tax_rate"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(w, "tax_rate must be a number")
			return
		}
		rate = decimal.NewNullDecimal(d)
	}
	v, err := h.service.View(r.Context(), id, rate)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	if err := h.service.Close(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	var body struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == uuid.Nil {
		badRequest(w, "product_id is required")
		return
	}
	v, err := h.service.AddLine(r.Context(), id, body.ProductID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) adjustLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	productID, ok := pathID(r, "product_id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := h.service.AdjustLine(r.Context(), id, productID, body.Delta)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	productID, ok := pathID(r, "product_id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}
	v, err := h.service.RemoveLine(r.Context(), id, productID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

type settleBody struct {
	PaymentMethod  string              `json:"payment_method"`
	AmountTendered decimal.NullDecimal `json:"amount_tendered"`
	TaxRate        decimal.NullDecimal `json:"tax_rate"`
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid session id")
		return
	}
	var body settleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, err.Error())
		return
	}
	method, err := payment.ParseMethod(body.PaymentMethod)
	if err != nil {
		fail(w, err)
		return
	}
	req := SettleInput{Method: method, AmountTendered: body.AmountTendered, TaxRate: body.TaxRate}
	sale, err := h.service.Settle(r.Context(), id, req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, sale)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
