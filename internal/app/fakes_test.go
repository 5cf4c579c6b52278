package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/naming"
	"github.com/collinsville22/pingmart/internal/payment"
	"github.com/collinsville22/pingmart/internal/registration"
	"github.com/collinsville22/pingmart/internal/swap"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	events []domain.OrderEvent

	updateErr error
}

func newFakeRepo(orders ...domain.Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeRepo) CreateOrder(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRepo) GetOrder(_ context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeRepo) FindOrderByPaymentRef(_ context.Context, ref string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.SessionID != nil && *order.SessionID == ref {
			o := order
			return &o, nil
		}
		if order.PaymentID != nil && *order.PaymentID == ref {
			o := order
			return &o, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) UpdateOrder(_ context.Context, id string, update domain.OrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = update.Status
	if update.PaymentID != nil {
		order.PaymentID = update.PaymentID
	}
	if update.PaidAt != nil {
		order.PaidAt = update.PaidAt
	}
	if update.RegisteredAt != nil {
		order.RegisteredAt = update.RegisteredAt
	}
	if update.RegistrationTx != nil {
		order.RegistrationTx = update.RegistrationTx
	}
	if update.SwapTx != nil {
		order.SwapTx = update.SwapTx
	}
	if update.RegistrationError != nil {
		order.RegistrationError = update.RegistrationError
	}
	if update.ClearRegistrationError {
		order.RegistrationError = nil
	}
	r.orders[id] = order
	return nil
}

func (r *fakeRepo) AppendEvent(_ context.Context, orderID, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	r.events = append(r.events, domain.OrderEvent{
		ID:        int64(len(r.events) + 1),
		OrderID:   orderID,
		EventType: eventType,
		Payload:   raw,
	})
	return nil
}

func (r *fakeRepo) ListEvents(_ context.Context, orderID string) ([]domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderEvent
	for _, ev := range r.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeRepo) eventTypes(orderID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.OrderID == orderID {
			out = append(out, ev.EventType)
		}
	}
	return out
}

type fakeProvider struct {
	session payment.Session
	err     error
	calls   int

	lastAmount decimal.Decimal
}

func (p *fakeProvider) CreateSession(_ context.Context, amountUSD decimal.Decimal, _ string) (payment.Session, error) {
	p.calls++
	p.lastAmount = amountUSD
	return p.session, p.err
}

type fakeVerifier struct {
	verification payment.Verification
	allow        bool
	forgotten    []string
	verified     []string
}

func (v *fakeVerifier) Verify(_ context.Context, sessionID string) payment.Verification {
	v.verified = append(v.verified, sessionID)
	return v.verification
}

func (v *fakeVerifier) AllowProbe(string) bool { return v.allow }

func (v *fakeVerifier) Forget(orderID string) { v.forgotten = append(v.forgotten, orderID) }

type fakeSwapper struct {
	result swap.Result
	err    error
	calls  int

	lastChain       domain.Chain
	lastAmount      string
	lastDestination string
}

func (s *fakeSwapper) Execute(_ context.Context, chain domain.Chain, amount, destination string) (swap.Result, error) {
	s.calls++
	s.lastChain = chain
	s.lastAmount = amount
	s.lastDestination = destination
	return s.result, s.err
}

type fakeFunds struct {
	balance string
	err     error
}

func (f *fakeFunds) SettlementBalance(context.Context) (string, error) {
	return f.balance, f.err
}

type fakeDriver struct {
	txHash string
	err    error
	calls  int
	steps  []string

	panicWith any
}

func (d *fakeDriver) Register(_ context.Context, label, ownerAddress string, onProgress registration.ProgressFunc) (string, error) {
	d.calls++
	if d.panicWith != nil {
		panic(d.panicWith)
	}
	if onProgress != nil {
		onProgress("Registering name on-chain...")
		d.steps = append(d.steps, label)
	}
	return d.txHash, d.err
}

type fakeChecker struct {
	available bool
}

func (c *fakeChecker) CheckName(_ context.Context, label string, chain domain.Chain) naming.CheckResult {
	info := naming.Info(chain)
	return naming.CheckResult{
		Domain:          label + info.TLD,
		Label:           label,
		Chain:           chain,
		TLD:             info.TLD,
		Available:       c.available,
		RegistrationURL: info.RegistrationURL,
	}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
