package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendingPayment     OrderStatus = "PENDING_PAYMENT"
	StatusPaymentProcessing  OrderStatus = "PAYMENT_PROCESSING"
	StatusPaymentConfirmed   OrderStatus = "PAYMENT_CONFIRMED"
	StatusSwapping           OrderStatus = "SWAPPING"
	StatusRegistering        OrderStatus = "REGISTERING"
	StatusRegistered         OrderStatus = "REGISTERED"
	StatusRegistrationFailed OrderStatus = "REGISTRATION_FAILED"
	StatusExpired            OrderStatus = "EXPIRED"
)

// Pending reports whether the order is still waiting on payment.
func (s OrderStatus) Pending() bool {
	return s == StatusPendingPayment || s == StatusPaymentProcessing
}

// AtOrPastConfirmed reports whether payment confirmation has already been
// applied, making a further confirmation a no-op.
func (s OrderStatus) AtOrPastConfirmed() bool {
	switch s {
	case StatusPaymentConfirmed, StatusSwapping, StatusRegistering,
		StatusRegistered, StatusRegistrationFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible. A failed
// registration is terminal only until a retry is accepted.
func (s OrderStatus) Terminal() bool {
	return s == StatusRegistered || s == StatusExpired
}

// Order is the mutable projection of one purchase attempt. Identity and the
// quoted facts (name, chain, term, price, owner address) are write-once at
// creation; everything else is written only by the orchestrator.
type Order struct {
	ID           string
	Domain       string
	TLD          string
	Chain        Chain
	Years        int
	PriceUSD     decimal.Decimal
	Status       OrderStatus
	SessionID    *string
	PaymentID    *string
	OwnerAddress string

	RegistrationError *string
	RegistrationTx    *string
	SwapTx            *string

	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaidAt       *time.Time
	RegisteredAt *time.Time
}
