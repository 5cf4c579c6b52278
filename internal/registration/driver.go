package registration

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/collinsville22/pingmart/internal/domain"
)

// ProgressFunc receives short human-readable phase strings for the audit log.
type ProgressFunc func(step string)

// Driver registers one name on one chain for the buyer. Implementations are
// stateless and idempotent per invocation, but invoking one twice for the same
// order costs real funds.
type Driver interface {
	Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (txHash string, err error)
}

// Registry is the static dispatch table from chain to driver.
type Registry map[domain.Chain]Driver

// For resolves the driver for a chain.
func (r Registry) For(chain domain.Chain) (Driver, bool) {
	d, ok := r[chain]
	return d, ok
}

// oneYearSeconds is the registration term passed to term-based registrars.
const oneYearSeconds = 365 * 24 * 60 * 60

// priceBufferPct is the safety margin applied over the quoted on-chain price
// to tolerate drift between quote and execution.
const priceBufferPct = 10

func withBuffer(price *big.Int) *big.Int {
	buffered := new(big.Int).Mul(price, big.NewInt(100+priceBufferPct))
	return buffered.Div(buffered, big.NewInt(100))
}

func newSecret() ([32]byte, error) {
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return secret, fmt.Errorf("generate commitment secret: %w", err)
	}
	return secret, nil
}
