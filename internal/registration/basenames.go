package registration

import (
	"context"
	"fmt"
	"math/big"
)

// Basenames registrar controller and L2 resolver on Base.
const (
	BaseControllerAddr = "0xa7d2607c6BD39Ae9521e514026CBB078405Ab322"
	baseResolver       = "0x426fA03fB86E510d0Dd9F70335Cf102a98b10875"
)

// BaseController is the on-chain surface of the Basenames registrar. No
// commitment phase: registration is a single priced call.
type BaseController interface {
	RegisterPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error)
	Register(ctx context.Context, label, owner string, durationSec int64, resolver string, value *big.Int) (txHash string, err error)
	WaitMined(ctx context.Context, txHash string) error
}

// BaseDriver registers .base.eth names with a direct registration call.
type BaseDriver struct {
	controller BaseController
}

func NewBaseDriver(controller BaseController) *BaseDriver {
	return &BaseDriver{controller: controller}
}

func (d *BaseDriver) Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (string, error) {
	progress(onProgress, "Fetching registration price...")
	price, err := d.controller.RegisterPrice(ctx, label, oneYearSeconds)
	if err != nil {
		return "", fmt.Errorf("base register price: %w", err)
	}

	progress(onProgress, "Registering name on Base...")
	txHash, err := d.controller.Register(ctx, label, ownerAddress, oneYearSeconds, baseResolver, withBuffer(price))
	if err != nil {
		return "", fmt.Errorf("base register: %w", err)
	}
	if err := d.controller.WaitMined(ctx, txHash); err != nil {
		return "", fmt.Errorf("base register confirmation: %w", err)
	}

	return txHash, nil
}
