package domain

import "time"

// OrderUpdate describes one orchestrator-issued transition. Status is always
// written; other fields only when set. ClearRegistrationError nulls the stored
// error on a successful retry.
type OrderUpdate struct {
	Status                 OrderStatus
	PaymentID              *string
	PaidAt                 *time.Time
	RegisteredAt           *time.Time
	RegistrationTx         *string
	SwapTx                 *string
	RegistrationError      *string
	ClearRegistrationError bool
}
