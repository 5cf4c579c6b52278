package naming

import (
	"context"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RegistryReader answers availability for one label on one chain. Each chain's
// implementation talks to that chain's registry and is injected at wiring time.
type RegistryReader interface {
	Available(ctx context.Context, label string) (available bool, premium bool, err error)
}

// CheckResult is the availability answer for one parsed name.
type CheckResult struct {
	Domain          string
	Label           string
	Chain           domain.Chain
	TLD             string
	Available       bool
	Premium         bool
	PriceUSD        *decimal.Decimal
	RegistrationURL string
}

// Checker fans availability lookups out across per-chain registry readers.
type Checker struct {
	readers map[domain.Chain]RegistryReader
}

func NewChecker(readers map[domain.Chain]RegistryReader) *Checker {
	return &Checker{readers: readers}
}

const maxConcurrentChecks = 8

// CheckNames resolves each parseable name best-effort: a failed per-chain
// lookup degrades that name to unavailable instead of failing the batch.
func (c *Checker) CheckNames(ctx context.Context, names []string) []CheckResult {
	type parsed struct {
		label string
		chain domain.Chain
	}
	items := make([]parsed, 0, len(names))
	for _, n := range names {
		if label, chain, ok := ParseName(n); ok {
			items = append(items, parsed{label: label, chain: chain})
		}
	}

	results := make([]CheckResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			results[i] = c.checkOne(gctx, it.label, it.chain)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CheckName resolves availability for a single label on a single chain.
func (c *Checker) CheckName(ctx context.Context, label string, chain domain.Chain) CheckResult {
	return c.checkOne(ctx, label, chain)
}

func (c *Checker) checkOne(ctx context.Context, label string, chain domain.Chain) CheckResult {
	info := Info(chain)
	res := CheckResult{
		Domain:          label + info.TLD,
		Label:           label,
		Chain:           chain,
		TLD:             info.TLD,
		RegistrationURL: info.RegistrationURL,
	}

	reader, ok := c.readers[chain]
	if !ok {
		return res
	}
	available, premium, err := reader.Available(ctx, label)
	if err != nil {
		return res
	}
	res.Available = available
	res.Premium = premium
	if available {
		price := Price(chain, label)
		res.PriceUSD = &price
	}
	return res
}
