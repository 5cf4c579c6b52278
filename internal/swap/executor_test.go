package swap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collinsville22/pingmart/internal/clock"
	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBridge struct {
	quote    QuoteResponse
	quoteErr error

	statuses  []StatusResponse
	statusErr error
	calls     int

	lastQuote QuoteRequest
}

func (b *fakeBridge) Quote(_ context.Context, req QuoteRequest) (QuoteResponse, error) {
	b.lastQuote = req
	return b.quote, b.quoteErr
}

func (b *fakeBridge) Status(context.Context, string) (StatusResponse, error) {
	if b.statusErr != nil {
		return StatusResponse{}, b.statusErr
	}
	status := b.statuses[b.calls]
	if b.calls < len(b.statuses)-1 {
		b.calls++
	}
	return status, nil
}

type fakeTransferor struct {
	txHash string
	err    error

	lastDeposit string
	lastAmount  string
}

func (t *fakeTransferor) TransferSettlement(_ context.Context, depositAddress, amount string) (string, error) {
	t.lastDeposit = depositAddress
	t.lastAmount = amount
	return t.txHash, t.err
}

func quoteWithDeposit(address string) QuoteResponse {
	return QuoteResponse{Quote: Quote{DepositAddress: address}}
}

func successStatus(hashes ...string) StatusResponse {
	out := StatusResponse{Status: BridgeSuccess}
	for _, h := range hashes {
		out.SwapDetails.DestinationChainTxHashes = append(out.SwapDetails.DestinationChainTxHashes, TxHash{Hash: h})
	}
	return out
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("quote, fund, poll to success", func(t *testing.T) {
		bridge := &fakeBridge{
			quote: quoteWithDeposit("deposit.near"),
			statuses: []StatusResponse{
				{Status: BridgePendingDeposit},
				{Status: BridgeProcessing},
				successStatus("0xdest"),
			},
		}
		transferor := &fakeTransferor{txHash: "near-tx"}
		exec := NewExecutor(bridge, transferor, clock.NewFixed(start), "custody.near")

		res, err := exec.Execute(context.Background(), domain.ChainEthereum, "25000000", "0xcustody")
		require.NoError(t, err)
		assert.Equal(t, "0xdest", res.TxHash)
		assert.Equal(t, BridgeSuccess, res.Status.Status)

		assert.Equal(t, "deposit.near", transferor.lastDeposit)
		assert.Equal(t, "25000000", transferor.lastAmount)

		req := bridge.lastQuote
		assert.Equal(t, "EXACT_INPUT", req.SwapType)
		assert.Equal(t, 500, req.SlippageTolerance)
		assert.Equal(t, usdcNear, req.OriginAsset)
		assert.Equal(t, "nep141:eth.omft.near", req.DestinationAsset)
		assert.Equal(t, "0xcustody", req.Recipient)
		assert.Equal(t, "custody.near", req.RefundTo)
		assert.Equal(t, start.Add(30*time.Minute).Format(time.RFC3339), req.Deadline)
	})

	t.Run("unroutable chain", func(t *testing.T) {
		exec := NewExecutor(&fakeBridge{}, &fakeTransferor{}, clock.NewFixed(start), "custody.near")
		_, err := exec.Execute(context.Background(), domain.ChainNear, "1", "anywhere")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no bridge route")
	})

	t.Run("quote without deposit address", func(t *testing.T) {
		bridge := &fakeBridge{quote: QuoteResponse{}}
		exec := NewExecutor(bridge, &fakeTransferor{}, clock.NewFixed(start), "custody.near")
		_, err := exec.Execute(context.Background(), domain.ChainEthereum, "1", "0xcustody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no deposit address")
	})

	t.Run("transfer failure aborts before polling", func(t *testing.T) {
		bridge := &fakeBridge{quote: quoteWithDeposit("deposit.near")}
		transferor := &fakeTransferor{err: errors.New("insufficient balance")}
		exec := NewExecutor(bridge, transferor, clock.NewFixed(start), "custody.near")

		_, err := exec.Execute(context.Background(), domain.ChainEthereum, "1", "0xcustody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fund deposit address")
		assert.Zero(t, bridge.calls)
	})

	t.Run("refunded swap fails", func(t *testing.T) {
		bridge := &fakeBridge{
			quote:    quoteWithDeposit("deposit.near"),
			statuses: []StatusResponse{{Status: BridgeRefunded}},
		}
		exec := NewExecutor(bridge, &fakeTransferor{}, clock.NewFixed(start), "custody.near")

		_, err := exec.Execute(context.Background(), domain.ChainEthereum, "1", "0xcustody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refunded")
	})

	t.Run("expired swap fails", func(t *testing.T) {
		bridge := &fakeBridge{
			quote:    quoteWithDeposit("deposit.near"),
			statuses: []StatusResponse{{Status: BridgeExpired}},
		}
		exec := NewExecutor(bridge, &fakeTransferor{}, clock.NewFixed(start), "custody.near")

		_, err := exec.Execute(context.Background(), domain.ChainEthereum, "1", "0xcustody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("non-terminal statuses time out", func(t *testing.T) {
		bridge := &fakeBridge{
			quote:    quoteWithDeposit("deposit.near"),
			statuses: []StatusResponse{{Status: BridgeProcessing}},
		}
		// The fixed clock advances on every Sleep, so the poll ceiling is
		// reached after ceiling/interval iterations.
		exec := NewExecutor(bridge, &fakeTransferor{}, clock.NewFixed(start), "custody.near",
			WithPollTiming(time.Second, 5*time.Second))

		_, err := exec.Execute(context.Background(), domain.ChainEthereum, "1", "0xcustody")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})
}
