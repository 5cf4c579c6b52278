package registration

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/collinsville22/pingmart/internal/clock"
)

// ARB registrar controller and default resolver on Arbitrum One.
const (
	ARBControllerAddr = "0xb7da95ec908cba7587b2243ca45d5a2fa92ce618"
	arbResolver       = "0xd64b43a3C74100e6fD9E88c1E96ee01F6f41B5c0"
)

// The ARB registrar's minimum commitment age is much shorter than ENS's.
const arbCommitMaturation = 15 * time.Second

// ARBController is the on-chain surface of the .arb registrar controller. Its
// commitment binds only name, owner and secret.
type ARBController interface {
	MakeCommitment(ctx context.Context, label, owner string, secret [32]byte) ([32]byte, error)
	Commit(ctx context.Context, commitment [32]byte) (txHash string, err error)
	RentPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error)
	RegisterWithConfig(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver, addr string, value *big.Int) (txHash string, err error)
	WaitMined(ctx context.Context, txHash string) error
}

// ARBDriver registers .arb names through the short commit-reveal protocol.
type ARBDriver struct {
	controller ARBController
	clock      clock.Clock
}

func NewARBDriver(controller ARBController, clk clock.Clock) *ARBDriver {
	return &ARBDriver{controller: controller, clock: clk}
}

func (d *ARBDriver) Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	progress(onProgress, "Calculating commitment...")
	commitment, err := d.controller.MakeCommitment(ctx, label, ownerAddress, secret)
	if err != nil {
		return "", fmt.Errorf("arb commitment: %w", err)
	}

	progress(onProgress, "Submitting commitment...")
	commitTx, err := d.controller.Commit(ctx, commitment)
	if err != nil {
		return "", fmt.Errorf("arb commit: %w", err)
	}
	if err := d.controller.WaitMined(ctx, commitTx); err != nil {
		return "", fmt.Errorf("arb commit confirmation: %w", err)
	}

	progress(onProgress, "Waiting 15s for commitment to mature...")
	if err := d.clock.Sleep(ctx, arbCommitMaturation); err != nil {
		return "", err
	}

	rentPrice, err := d.controller.RentPrice(ctx, label, oneYearSeconds)
	if err != nil {
		return "", fmt.Errorf("arb rent price: %w", err)
	}

	progress(onProgress, "Registering name on-chain...")
	registerTx, err := d.controller.RegisterWithConfig(ctx, label, ownerAddress, oneYearSeconds, secret, arbResolver, ownerAddress, withBuffer(rentPrice))
	if err != nil {
		return "", fmt.Errorf("arb register: %w", err)
	}
	if err := d.controller.WaitMined(ctx, registerTx); err != nil {
		return "", fmt.Errorf("arb register confirmation: %w", err)
	}

	return registerTx, nil
}
