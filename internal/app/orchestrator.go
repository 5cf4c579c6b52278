package app

import (
	"context"

	"github.com/collinsville22/pingmart/internal/clock"
	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/naming"
	"github.com/collinsville22/pingmart/internal/payment"
	"github.com/collinsville22/pingmart/internal/registration"
	"github.com/collinsville22/pingmart/internal/swap"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderRepository is the orchestrator's view of the order store and event log.
type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	FindOrderByPaymentRef(ctx context.Context, ref string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, update domain.OrderUpdate) error
	AppendEvent(ctx context.Context, orderID, eventType string, payload any) error
	ListEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}

// PaymentProvider opens checkout sessions with the payment processor.
type PaymentProvider interface {
	CreateSession(ctx context.Context, amountUSD decimal.Decimal, orderID string) (payment.Session, error)
}

// PaymentVerifier is the payment reconciler surface the orchestrator uses.
type PaymentVerifier interface {
	Verify(ctx context.Context, sessionID string) payment.Verification
	AllowProbe(orderID string) bool
	Forget(orderID string)
}

// SwapExecutor bridges settlement funds to a destination chain.
type SwapExecutor interface {
	Execute(ctx context.Context, chain domain.Chain, sourceAmount, destinationAddress string) (swap.Result, error)
}

// FundsReader reports the custody settlement balance available for swaps.
type FundsReader interface {
	SettlementBalance(ctx context.Context) (string, error)
}

// AvailabilityChecker answers whether a name can still be bought.
type AvailabilityChecker interface {
	CheckName(ctx context.Context, label string, chain domain.Chain) naming.CheckResult
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Repo       OrderRepository
	Payments   PaymentProvider
	Reconciler PaymentVerifier
	Swapper    SwapExecutor
	Funds      FundsReader
	Drivers    registration.Registry
	Checker    AvailabilityChecker

	// CustodyAddresses holds the platform's per-chain custody wallets that
	// receive swapped funds before a registration is paid from them.
	CustodyAddresses map[domain.Chain]string

	Clock  clock.Clock
	Runner Runner
	Logger *zap.Logger
}

// Orchestrator owns the order state machine: it decides what runs next,
// invokes the swap executor and the matching registration driver, and is the
// only writer of order state and events.
type Orchestrator struct {
	repo       OrderRepository
	payments   PaymentProvider
	reconciler PaymentVerifier
	swapper    SwapExecutor
	funds      FundsReader
	drivers    registration.Registry
	checker    AvailabilityChecker
	custody    map[domain.Chain]string
	clock      clock.Clock
	runner     Runner
	logger     *zap.Logger
	locks      *orderLocks
}

func NewOrchestrator(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		repo:       deps.Repo,
		payments:   deps.Payments,
		reconciler: deps.Reconciler,
		swapper:    deps.Swapper,
		funds:      deps.Funds,
		drivers:    deps.Drivers,
		checker:    deps.Checker,
		custody:    deps.CustodyAddresses,
		clock:      deps.Clock,
		runner:     deps.Runner,
		logger:     logger,
		locks:      newOrderLocks(),
	}
}

type CreateOrderInput struct {
	Name         string
	Chain        domain.Chain
	OwnerAddress string
}

type CreateOrderResult struct {
	Order           domain.Order
	PaymentURL      string
	RegistrationURL string
}

// CreateOrder validates the request, re-checks availability, opens a checkout
// session and persists the order in PENDING_PAYMENT.
func (o *Orchestrator) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	label, err := validateCreateOrder(in)
	if err != nil {
		return CreateOrderResult{}, err
	}

	check := o.checker.CheckName(ctx, label, in.Chain)
	if !check.Available {
		return CreateOrderResult{}, domain.ErrNameUnavailable
	}

	price := naming.Price(in.Chain, label)
	info := naming.Info(in.Chain)
	orderID := uuid.NewString()

	session, err := o.payments.CreateSession(ctx, price, orderID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	now := o.clock.Now()
	order := domain.Order{
		ID:           orderID,
		Domain:       check.Domain,
		TLD:          info.TLD,
		Chain:        in.Chain,
		Years:        1,
		PriceUSD:     price,
		Status:       domain.StatusPendingPayment,
		SessionID:    &session.ID,
		OwnerAddress: in.OwnerAddress,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = o.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := o.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		return o.repo.AppendEvent(txCtx, orderID, domain.EventPendingPayment, map[string]any{
			"name":         check.Domain,
			"chain":        in.Chain,
			"price":        price,
			"ownerAddress": in.OwnerAddress,
			"sessionId":    session.ID,
		})
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	o.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("name", check.Domain),
		zap.String("chain", string(in.Chain)),
	)

	return CreateOrderResult{
		Order:           order,
		PaymentURL:      session.URL,
		RegistrationURL: check.RegistrationURL,
	}, nil
}

// ConfirmPayment applies a verified payment signal. It is idempotent: an
// order already at or past PAYMENT_CONFIRMED is left untouched. The per-order
// lock makes the check-then-transition atomic against the racing webhook and
// polling producers, so the saga launches exactly once.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, orderID, paymentRef, source string) error {
	unlock := o.locks.Lock(orderID)
	defer unlock()

	order, err := o.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status.AtOrPastConfirmed() || order.Status == domain.StatusExpired {
		return nil
	}

	now := o.clock.Now()
	update := domain.OrderUpdate{
		Status: domain.StatusPaymentConfirmed,
		PaidAt: &now,
	}
	if paymentRef != "" {
		update.PaymentID = &paymentRef
	}

	err = o.transition(ctx, orderID, update, domain.EventPaymentConfirmed, map[string]any{
		"paymentId": paymentRef,
		"source":    source,
	})
	if err != nil {
		return err
	}

	o.reconciler.Forget(orderID)
	o.logger.Info("payment confirmed",
		zap.String("order_id", orderID),
		zap.String("source", source),
	)

	o.runner.Go(func() {
		o.runSaga(context.Background(), orderID)
	})
	return nil
}

// Retry re-enters the saga for an order whose previous attempt failed. It
// acknowledges acceptance immediately; the outcome is discoverable only by
// polling the order.
func (o *Orchestrator) Retry(ctx context.Context, orderID string) error {
	unlock := o.locks.Lock(orderID)
	defer unlock()

	order, err := o.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusRegistrationFailed {
		return domain.ErrRetryNotAllowed
	}

	if err := o.repo.AppendEvent(ctx, orderID, domain.EventRetryRequested, nil); err != nil {
		return err
	}

	o.logger.Info("retry accepted", zap.String("order_id", orderID))

	o.runner.Go(func() {
		o.runSaga(context.Background(), orderID)
	})
	return nil
}

// OrderWithEvents pairs the mutable projection with its audit log.
type OrderWithEvents struct {
	Order  domain.Order
	Events []domain.OrderEvent
}

// GetOrder returns the order and its events. While the order is still waiting
// on payment it doubles as the polling trigger: at most once per interval it
// probes the processor and either confirms the payment or expires the order.
func (o *Orchestrator) GetOrder(ctx context.Context, orderID string) (OrderWithEvents, error) {
	order, err := o.repo.GetOrder(ctx, orderID)
	if err != nil {
		return OrderWithEvents{}, err
	}

	if order.Status.Pending() && order.SessionID != nil && o.reconciler.AllowProbe(orderID) {
		v := o.reconciler.Verify(ctx, *order.SessionID)
		switch {
		case v.Verified:
			if err := o.ConfirmPayment(ctx, orderID, v.PaymentID, "polling"); err != nil {
				o.logger.Warn("polling confirmation failed",
					zap.String("order_id", orderID), zap.Error(err))
			}
		case v.Expired:
			o.expire(ctx, orderID)
		}

		order, err = o.repo.GetOrder(ctx, orderID)
		if err != nil {
			return OrderWithEvents{}, err
		}
	}

	events, err := o.repo.ListEvents(ctx, orderID)
	if err != nil {
		return OrderWithEvents{}, err
	}
	return OrderWithEvents{Order: order, Events: events}, nil
}

// FindOrderByPaymentRef resolves an order by checkout session or payment id,
// for webhook dispatch.
func (o *Orchestrator) FindOrderByPaymentRef(ctx context.Context, ref string) (*domain.Order, error) {
	return o.repo.FindOrderByPaymentRef(ctx, ref)
}

// RecordEvent appends an audit event without a status transition.
func (o *Orchestrator) RecordEvent(ctx context.Context, orderID, eventType string, payload any) error {
	return o.repo.AppendEvent(ctx, orderID, eventType, payload)
}

// expire moves a pending order to EXPIRED after the processor reported its
// session terminally dead. EXPIRED is reachable from the pending states only.
func (o *Orchestrator) expire(ctx context.Context, orderID string) {
	unlock := o.locks.Lock(orderID)
	defer unlock()

	order, err := o.repo.GetOrder(ctx, orderID)
	if err != nil || !order.Status.Pending() {
		return
	}

	err = o.transition(ctx, orderID, domain.OrderUpdate{Status: domain.StatusExpired}, domain.EventExpired, nil)
	if err != nil {
		o.logger.Warn("expire failed", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	o.reconciler.Forget(orderID)
	o.logger.Info("order expired", zap.String("order_id", orderID))
}

// transition writes the projection update and its paired event atomically.
func (o *Orchestrator) transition(ctx context.Context, orderID string, update domain.OrderUpdate, eventType string, payload any) error {
	return o.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := o.repo.UpdateOrder(txCtx, orderID, update); err != nil {
			return err
		}
		return o.repo.AppendEvent(txCtx, orderID, eventType, payload)
	})
}
