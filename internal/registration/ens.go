package registration

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/collinsville22/pingmart/internal/clock"
)

// ENS mainnet controller and public resolver.
const (
	ENSControllerAddr = "0x253553366Da8546fC250F225fe3d25d0C782303b"
	ensPublicResolver = "0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63"
)

// The controller enforces a 60s minimum commitment age; wait a little past it.
const ensCommitMaturation = 65 * time.Second

// ENSController is the on-chain surface of the ENS registrar controller,
// reached through an external signing client.
type ENSController interface {
	MakeCommitment(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string) ([32]byte, error)
	Commit(ctx context.Context, commitment [32]byte) (txHash string, err error)
	RentPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error)
	Register(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string, value *big.Int) (txHash string, err error)
	WaitMined(ctx context.Context, txHash string) error
}

// ENSDriver registers .eth names through the commit-reveal protocol.
type ENSDriver struct {
	controller ENSController
	clock      clock.Clock
}

func NewENSDriver(controller ENSController, clk clock.Clock) *ENSDriver {
	return &ENSDriver{controller: controller, clock: clk}
}

func (d *ENSDriver) Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	progress(onProgress, "Calculating commitment...")
	commitment, err := d.controller.MakeCommitment(ctx, label, ownerAddress, oneYearSeconds, secret, ensPublicResolver)
	if err != nil {
		return "", fmt.Errorf("ens commitment: %w", err)
	}

	progress(onProgress, "Submitting commitment...")
	commitTx, err := d.controller.Commit(ctx, commitment)
	if err != nil {
		return "", fmt.Errorf("ens commit: %w", err)
	}
	if err := d.controller.WaitMined(ctx, commitTx); err != nil {
		return "", fmt.Errorf("ens commit confirmation: %w", err)
	}

	progress(onProgress, "Waiting 60s for commitment to mature...")
	if err := d.clock.Sleep(ctx, ensCommitMaturation); err != nil {
		return "", err
	}

	rentPrice, err := d.controller.RentPrice(ctx, label, oneYearSeconds)
	if err != nil {
		return "", fmt.Errorf("ens rent price: %w", err)
	}

	progress(onProgress, "Registering name on-chain...")
	registerTx, err := d.controller.Register(ctx, label, ownerAddress, oneYearSeconds, secret, ensPublicResolver, withBuffer(rentPrice))
	if err != nil {
		return "", fmt.Errorf("ens register: %w", err)
	}
	if err := d.controller.WaitMined(ctx, registerTx); err != nil {
		return "", fmt.Errorf("ens register confirmation: %w", err)
	}

	return registerTx, nil
}

func progress(fn ProgressFunc, step string) {
	if fn != nil {
		fn(step)
	}
}
