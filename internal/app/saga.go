package app

import (
	"context"
	"fmt"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/naming"
	"go.uber.org/zap"
)

// runSaga drives one registration attempt to a terminal outcome. It never
// propagates errors: every failure is recorded as order state and an event.
// The saga is not transactional across the swap and registration steps; a
// swap that succeeded before a failed registration stays executed, and its tx
// hash is persisted so a retry does not swap again.
func (o *Orchestrator) runSaga(ctx context.Context, orderID string) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic: %v", r)
			o.logger.Error("saga panicked", zap.String("order_id", orderID), zap.String("panic", msg))
			_ = o.repo.AppendEvent(ctx, orderID, domain.EventUnhandledError, map[string]any{"error": msg})
		}
	}()

	order, err := o.repo.GetOrder(ctx, orderID)
	if err != nil {
		o.logger.Error("saga load order", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	swapTx := order.SwapTx
	if order.Chain.NeedsSwap() {
		switch {
		case swapTx != nil:
			// A previous attempt already bridged funds; registering again is
			// safe, swapping again is not.
			_ = o.repo.AppendEvent(ctx, orderID, domain.EventSwapSkipped, map[string]any{
				"txHash": *swapTx,
			})
		default:
			tx, err := o.runSwap(ctx, order)
			if err != nil {
				o.failSaga(ctx, orderID, err)
				return
			}
			swapTx = tx
		}
	}

	update := domain.OrderUpdate{Status: domain.StatusRegistering, SwapTx: swapTx}
	if err := o.transition(ctx, orderID, update, domain.EventRegistering, map[string]any{
		"chain": order.Chain,
	}); err != nil {
		o.logger.Error("saga transition to registering", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	txHash, err := o.runRegistration(ctx, order)
	if err != nil {
		o.failSaga(ctx, orderID, err)
		return
	}

	now := o.clock.Now()
	success := domain.OrderUpdate{
		Status:                 domain.StatusRegistered,
		RegisteredAt:           &now,
		RegistrationTx:         &txHash,
		SwapTx:                 swapTx,
		ClearRegistrationError: true,
	}
	payload := map[string]any{"chain": order.Chain, "txHash": txHash}
	if swapTx != nil {
		payload["swapTxHash"] = *swapTx
	}
	if err := o.transition(ctx, orderID, success, domain.EventRegistered, payload); err != nil {
		o.logger.Error("saga record success", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	o.logger.Info("registration complete",
		zap.String("order_id", orderID),
		zap.String("tx", txHash),
	)
}

// runSwap transitions to SWAPPING and bridges the full custody settlement
// balance to the destination chain's custody wallet.
func (o *Orchestrator) runSwap(ctx context.Context, order domain.Order) (*string, error) {
	err := o.transition(ctx, order.ID, domain.OrderUpdate{Status: domain.StatusSwapping}, domain.EventSwapping, map[string]any{
		"chain": order.Chain,
	})
	if err != nil {
		return nil, err
	}

	balance, err := o.funds.SettlementBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settlement balance: %w", err)
	}
	if balance == "" || balance == "0" {
		return nil, domain.ErrNoSettlementFunds
	}

	destination, ok := o.custody[order.Chain]
	if !ok {
		return nil, fmt.Errorf("no custody wallet for chain %s", order.Chain)
	}

	result, err := o.swapper.Execute(ctx, order.Chain, balance, destination)
	if err != nil {
		return nil, err
	}
	if result.TxHash == "" {
		return nil, nil
	}
	return &result.TxHash, nil
}

func (o *Orchestrator) runRegistration(ctx context.Context, order domain.Order) (string, error) {
	driver, ok := o.drivers.For(order.Chain)
	if !ok {
		return "", fmt.Errorf("no registration driver for chain %s", order.Chain)
	}

	label, _, parsed := naming.ParseName(order.Domain)
	if !parsed {
		return "", fmt.Errorf("unparseable order name %q", order.Domain)
	}

	onProgress := func(step string) {
		_ = o.repo.AppendEvent(ctx, order.ID, domain.EventProgress, map[string]any{"step": step})
	}

	return driver.Register(ctx, label, order.OwnerAddress, onProgress)
}

// failSaga records a terminal-but-resumable failure. The stored message is
// what operators and the buyer see.
func (o *Orchestrator) failSaga(ctx context.Context, orderID string, cause error) {
	msg := cause.Error()
	update := domain.OrderUpdate{
		Status:            domain.StatusRegistrationFailed,
		RegistrationError: &msg,
	}
	if err := o.transition(ctx, orderID, update, domain.EventRegistrationFailed, map[string]any{
		"error": msg,
	}); err != nil {
		o.logger.Error("saga record failure", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	o.logger.Warn("registration failed", zap.String("order_id", orderID), zap.String("error", msg))
}
