package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/platform/logging"
	"github.com/georgemunganga/stockly-pos/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettleInput is a settle request whose tax rate may be left to the default.
type SettleInput struct {
	Method         payment.Method
	AmountTendered decimal.NullDecimal
	TaxRate        decimal.NullDecimal
}

// Service runs checkout sessions against one engine.
type Service interface {
	Open(ctx context.Context) (*View, error)
	View(ctx context.Context, sessionID uuid.UUID, rate decimal.NullDecimal) (*View, error)
	AddLine(ctx context.Context, sessionID, productID uuid.UUID) (*View, error)
	AdjustLine(ctx context.Context, sessionID, productID uuid.UUID, delta int) (*View, error)
	RemoveLine(ctx context.Context, sessionID, productID uuid.UUID) (*View, error)
	Settle(ctx context.Context, sessionID uuid.UUID, in SettleInput) (*sales.Sale, error)
	// Close cancels the session's cart and forgets the session.
	Close(ctx context.Context, sessionID uuid.UUID) error
}

type service struct {
	engine      *Engine
	products    ProductReader
	sessions    *SessionRegistry
	defaultRate decimal.Decimal
	metrics     *metrics.CheckoutMetrics
}

// NewService wires sessions to engine. m may be nil.
func NewService(engine *Engine, products ProductReader, defaultRate decimal.Decimal, m *metrics.CheckoutMetrics) Service {
	return &service{
		engine:      engine,
		products:    products,
		sessions:    NewSessionRegistry(),
		defaultRate: defaultRate,
		metrics:     m,
	}
}

func (s *service) rate(r decimal.NullDecimal) decimal.Decimal {
	if r.Valid {
		return r.Decimal
	}
	return s.defaultRate
}

func (s *service) Open(ctx context.Context) (*View, error) {
	sess := s.sessions.Create(s.products)
	logging.Log(logging.Fields{Service: "checkout", SessionID: sess.ID.String(), Step: "open", Status: "ok"})
	return sess.View(ctx, s.defaultRate)
}

func (s *service) View(ctx context.Context, sessionID uuid.UUID, rate decimal.NullDecimal) (*View, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	r := s.rate(rate)
	if r.IsNegative() {
		return nil, ErrInvalidTaxRate
	}
	return sess.View(ctx, r)
}

func (s *service) AddLine(ctx context.Context, sessionID, productID uuid.UUID) (*View, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error { return sess.Add(ctx, productID) })
}

func (s *service) AdjustLine(ctx context.Context, sessionID, productID uuid.UUID, delta int) (*View, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error { return sess.Adjust(ctx, productID, delta) })
}

func (s *service) RemoveLine(ctx context.Context, sessionID, productID uuid.UUID) (*View, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error { return sess.Remove(productID) })
}

func (s *service) mutate(ctx context.Context, sessionID uuid.UUID, fn func(*Session) error) (*View, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess.View(ctx, s.defaultRate)
}

func (s *service) Settle(ctx context.Context, sessionID uuid.UUID, in SettleInput) (*sales.Sale, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	sale, err := sess.Settle(ctx, s.engine, SettleRequest{
		TaxRate:        s.rate(in.TaxRate),
		Method:         in.Method,
		AmountTendered: in.AmountTendered,
	})
	outcome := Outcome(err)

	fields := logging.Fields{
		Service:    "checkout",
		SessionID:  sessionID.String(),
		Step:       "settle",
		Status:     outcome,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		fields.Error = err.Error()
		logging.Log(fields)
		s.metrics.ObserveSettle(outcome, started, 0)
		return nil, err
	}
	fields.SaleID = sale.ID.String()
	fields.Message = "total " + sale.Total.StringFixed(2) + " " + string(sale.PaymentMethod)
	logging.Log(fields)
	s.metrics.ObserveSettle(outcome, started, sale.Units())
	return sale, nil
}

func (s *service) Close(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if err := sess.Cancel(); err != nil && !errors.Is(err, ErrSessionClosed) {
		return err
	}
	s.sessions.Delete(sessionID)
	logging.Log(logging.Fields{Service: "checkout", SessionID: sessionID.String(), Step: "close", Status: "ok"})
	return nil
}
