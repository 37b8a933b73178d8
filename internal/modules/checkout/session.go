package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is where a session is in its lifecycle.
type State string

const (
	StateBuilding  State = "building"
	StateSettling  State = "settling"
	StateCommitted State = "committed"
)

// Session owns one cart from first scan to committed sale.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	products ProductReader

	mu    sync.Mutex
	state State
	cart  *Cart
	sale  *sales.Sale
}

func NewSession(products ProductReader) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		products:  products,
		state:     StateBuilding,
		cart:      NewCart(),
	}
}

// writable must be called with mu held.
func (s *Session) writable() error {
	switch s.state {
	case StateSettling:
		return ErrSessionBusy
	case StateCommitted:
		return ErrSessionClosed
	}
	return nil
}

// Add puts one more unit of productID in the cart.
func (s *Session) Add(ctx context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return s.cart.Add(p)
}

func (s *Session) Adjust(ctx context.Context, productID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	if s.cart.Quantity(productID) == 0 {
		return ErrLineNotFound
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return s.cart.Adjust(p, delta)
}

func (s *Session) Remove(productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	s.cart.Remove(productID)
	return nil
}

// Cancel empties the cart. The session stays open.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	s.cart.Clear()
	return nil
}

// Settle hands the cart to engine. The cart is frozen while the engine
// runs; on failure the session returns to Building with the cart as it was.
func (s *Session) Settle(ctx context.Context, engine *Engine, req SettleRequest) (*sales.Sale, error) {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = StateSettling
	s.mu.Unlock()

	sale, err := engine.Settle(ctx, s.cart, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateBuilding
		return nil, err
	}
	s.state = StateCommitted
	s.sale = sale
	s.cart.Clear()
	return sale, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sale returns the committed sale, or nil.
func (s *Session) Sale() *sales.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sale
}

// ViewLine is a cart line priced at the catalog's current values.
type ViewLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	// Missing marks a line whose product left the catalog. It is not priced.
	Missing bool `json:"missing,omitempty"`
}

// View is the live, display-rounded state of a session.
type View struct {
	ID      uuid.UUID       `json:"id"`
	State   State           `json:"state"`
	Lines   []ViewLine      `json:"lines"`
	TaxRate decimal.Decimal `json:"tax_rate"`
	Totals  pricing.Totals  `json:"totals"`
	SaleID  *uuid.UUID      `json:"sale_id,omitempty"`
}

// View prices the cart live at ratePercent. Lines whose product was
// deleted are reported as Missing rather than failing the view.
func (s *Session) View(ctx context.Context, ratePercent decimal.Decimal) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &View{ID: s.ID, State: s.state, Lines: []ViewLine{}, TaxRate: ratePercent}
	if s.sale != nil {
		v.SaleID = &s.sale.ID
	}
	priced := make([]pricing.Line, 0, s.cart.Len())
	for _, l := range s.cart.Lines() {
		p, err := s.products.GetByID(ctx, l.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			v.Lines = append(v.Lines, ViewLine{ProductID: l.ProductID, Quantity: l.Quantity, Missing: true})
			continue
		}
		if err != nil {
			return nil, err
		}
		vl := ViewLine{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
			LineTotal: pricing.Round(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))),
			Stock:     p.Stock,
		}
		v.Lines = append(v.Lines, vl)
		priced = append(priced, pricing.Line{Quantity: l.Quantity, UnitPrice: p.Price})
	}
	v.Totals = pricing.Calculate(priced, ratePercent).Rounded()
	return v, nil
}

// SessionRegistry keeps open sessions in memory.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: map[uuid.UUID]*Session{}}
}

func (r *SessionRegistry) Create(products ProductReader) *Session {
	s := NewSession(products)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *SessionRegistry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
