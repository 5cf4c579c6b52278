package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/collinsville22/pingmart/internal/clock"
	"github.com/collinsville22/pingmart/internal/domain"
)

// usdcNear is the settlement asset: USDC held in platform custody on NEAR.
const usdcNear = "nep141:17208628f84f5d6ad33f0da3bbbeb27ffcb398eac501a31bd6ad2011e36133a1"

// destAssets maps each non-native chain to the bridge's asset identifier for
// that chain's registration currency.
var destAssets = map[domain.Chain]string{
	domain.ChainEthereum: "nep141:eth.omft.near",
	domain.ChainSolana:   "nep141:sol.omft.near",
	domain.ChainBase:     "nep141:base.omft.near",
	domain.ChainArbitrum: "nep141:arb.omft.near",
}

const (
	quoteDeadline = 30 * time.Minute
	slippageBps   = 500

	defaultPollInterval = 5 * time.Second
	defaultPollCeiling  = 300 * time.Second
)

// Bridge is the slice of the bridge client the executor drives.
type Bridge interface {
	Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error)
	Status(ctx context.Context, depositAddress string) (StatusResponse, error)
}

// Transferor moves settlement funds from platform custody to a bridge deposit
// address. Implementations must register the deposit address for storage and
// then transfer, abandoning the whole step if either part fails.
type Transferor interface {
	TransferSettlement(ctx context.Context, depositAddress, amount string) (txHash string, err error)
}

// Result reports a completed swap: the destination-chain transaction hash and
// the bridge's final status payload.
type Result struct {
	TxHash string
	Status StatusResponse
}

// Executor drives one cross-chain swap: quote, fund the deposit address, then
// poll the bridge to a terminal status.
type Executor struct {
	bridge        Bridge
	transferor    Transferor
	clock         clock.Clock
	refundAddress string
	pollInterval  time.Duration
	pollCeiling   time.Duration
}

func NewExecutor(bridge Bridge, transferor Transferor, clk clock.Clock, refundAddress string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		bridge:        bridge,
		transferor:    transferor,
		clock:         clk,
		refundAddress: refundAddress,
		pollInterval:  defaultPollInterval,
		pollCeiling:   defaultPollCeiling,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ExecutorOption func(*Executor)

// WithPollTiming overrides the status poll interval and wall-clock ceiling.
func WithPollTiming(interval, ceiling time.Duration) ExecutorOption {
	return func(e *Executor) {
		if interval > 0 {
			e.pollInterval = interval
		}
		if ceiling > 0 {
			e.pollCeiling = ceiling
		}
	}
}

// Execute swaps sourceAmount of the settlement asset into the destination
// chain's asset, delivered to destinationAddress. Any failure here is a saga
// failure for the caller, never partial success.
func (e *Executor) Execute(ctx context.Context, chain domain.Chain, sourceAmount, destinationAddress string) (Result, error) {
	destAsset, ok := destAssets[chain]
	if !ok {
		return Result{}, fmt.Errorf("no bridge route for chain %s", chain)
	}

	quote, err := e.bridge.Quote(ctx, QuoteRequest{
		Dry:               false,
		SwapType:          "EXACT_INPUT",
		SlippageTolerance: slippageBps,
		OriginAsset:       usdcNear,
		DepositType:       "ORIGIN_CHAIN",
		DestinationAsset:  destAsset,
		Amount:            sourceAmount,
		RefundTo:          e.refundAddress,
		RefundType:        "ORIGIN_CHAIN",
		Recipient:         destinationAddress,
		RecipientType:     "DESTINATION_CHAIN",
		Deadline:          e.clock.Now().Add(quoteDeadline).Format(time.RFC3339),
	})
	if err != nil {
		return Result{}, err
	}
	if quote.Quote.DepositAddress == "" {
		return Result{}, fmt.Errorf("no deposit address in quote response")
	}

	if _, err := e.transferor.TransferSettlement(ctx, quote.Quote.DepositAddress, sourceAmount); err != nil {
		return Result{}, fmt.Errorf("fund deposit address: %w", err)
	}

	status, err := e.pollUntilComplete(ctx, quote.Quote.DepositAddress)
	if err != nil {
		return Result{}, err
	}

	res := Result{Status: status}
	if hashes := status.SwapDetails.DestinationChainTxHashes; len(hashes) > 0 {
		res.TxHash = hashes[0].Hash
	}
	return res, nil
}

func (e *Executor) pollUntilComplete(ctx context.Context, depositAddress string) (StatusResponse, error) {
	deadline := e.clock.Now().Add(e.pollCeiling)
	for e.clock.Now().Before(deadline) {
		status, err := e.bridge.Status(ctx, depositAddress)
		if err != nil {
			return StatusResponse{}, err
		}
		switch status.Status {
		case BridgeSuccess:
			return status, nil
		case BridgeRefunded:
			return StatusResponse{}, fmt.Errorf("swap was refunded")
		case BridgeExpired:
			return StatusResponse{}, fmt.Errorf("swap expired")
		}
		if err := e.clock.Sleep(ctx, e.pollInterval); err != nil {
			return StatusResponse{}, err
		}
	}
	return StatusResponse{}, fmt.Errorf("swap timed out after %s", e.pollCeiling)
}
