package payment

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SessionGetter is the slice of the processor client the reconciler needs.
type SessionGetter interface {
	GetSession(ctx context.Context, sessionID string) (SessionStatus, error)
}

// Verification normalizes webhook- and polling-triggered probes into one
// signal. Expired marks a session the processor will never complete.
type Verification struct {
	Verified  bool
	PaymentID string
	Expired   bool
}

// Reconciler decides whether a session has actually completed payment.
// Transport failures are reported as unverified, never as errors: callers
// treat unverified as "try again later".
type Reconciler struct {
	sessions SessionGetter

	mu       sync.Mutex
	probes   map[string]*rate.Limiter
	interval time.Duration
}

const defaultProbeInterval = 10 * time.Second

func NewReconciler(sessions SessionGetter, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		sessions: sessions,
		probes:   make(map[string]*rate.Limiter),
		interval: defaultProbeInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type ReconcilerOption func(*Reconciler)

// WithProbeInterval overrides the minimum spacing between polling probes for
// one order.
func WithProbeInterval(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

// Verify queries the processor once. Only a session in the terminal COMPLETED
// state counts as verified.
func (r *Reconciler) Verify(ctx context.Context, sessionID string) Verification {
	status, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Verification{}
	}
	switch status.Status {
	case SessionCompleted:
		return Verification{Verified: true, PaymentID: status.PaymentID}
	case SessionExpired:
		return Verification{Expired: true}
	default:
		return Verification{}
	}
}

// AllowProbe rate-limits polling-triggered verification to at most one probe
// per interval per order. Webhook-triggered verification bypasses this.
func (r *Reconciler) AllowProbe(orderID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	lim, ok := r.probes[orderID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(r.interval), 1)
		r.probes[orderID] = lim
	}
	return lim.Allow()
}

// Forget drops the probe limiter once the order leaves its pending window.
func (r *Reconciler) Forget(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.probes, orderID)
}
