package domain

import (
	"encoding/json"
	"time"
)

// Event tags. Every status transition is paired with an event carrying the
// same tag, so the log replays the order's history independently of the
// mutable projection.
const (
	EventPendingPayment     = "PENDING_PAYMENT"
	EventPaymentConfirmed   = "PAYMENT_CONFIRMED"
	EventPaymentUnverified  = "PAYMENT_UNVERIFIED"
	EventWebhookReceived    = "WEBHOOK_RECEIVED"
	EventSwapping           = "SWAPPING"
	EventSwapSkipped        = "SWAP_SKIPPED"
	EventRegistering        = "REGISTERING"
	EventProgress           = "PROGRESS"
	EventRegistered         = "REGISTERED"
	EventRegistrationFailed = "REGISTRATION_FAILED"
	EventRetryRequested     = "RETRY_REQUESTED"
	EventExpired            = "EXPIRED"
	EventUnhandledError     = "REGISTRATION_UNHANDLED_ERROR"
)

// OrderEvent is one append-only entry in an order's audit log.
type OrderEvent struct {
	ID        int64
	OrderID   string
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
}
