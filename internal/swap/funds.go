package swap

import (
	"context"
	"strings"
)

// TokenBalancer reads NEP-141 token balances; satisfied by the NEAR RPC client.
type TokenBalancer interface {
	FTBalance(ctx context.Context, tokenContract, accountID string) (string, error)
}

// SettlementFunds reports the custody account's settlement (USDC on NEAR)
// balance. The saga refuses to start a swap when the balance reads zero.
type SettlementFunds struct {
	balances TokenBalancer
	account  string
}

func NewSettlementFunds(balances TokenBalancer, custodyAccount string) *SettlementFunds {
	return &SettlementFunds{balances: balances, account: custodyAccount}
}

// SettlementBalance returns the custody balance in the token's minor units.
func (f *SettlementFunds) SettlementBalance(ctx context.Context) (string, error) {
	contract := strings.TrimPrefix(usdcNear, "nep141:")
	return f.balances.FTBalance(ctx, contract, f.account)
}
