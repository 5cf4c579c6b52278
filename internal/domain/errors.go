package domain

import "errors"

var (
	ErrInvalidName       = errors.New("invalid name format")
	ErrInvalidChain      = errors.New("unsupported chain")
	ErrInvalidAddress    = errors.New("invalid wallet address for selected chain")
	ErrNameUnavailable   = errors.New("name is not available")
	ErrNameTaken         = errors.New("name already registered")
	ErrOrderNotFound     = errors.New("order not found")
	ErrRetryNotAllowed   = errors.New("can only retry failed registrations")
	ErrSessionExpired    = errors.New("payment session expired")
	ErrInvalidID         = errors.New("invalid id")
	ErrNoSettlementFunds = errors.New("no settlement funds available for swap")
)
