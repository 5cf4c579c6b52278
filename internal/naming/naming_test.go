package naming

import (
	"context"
	"errors"
	"testing"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/shopspring/decimal"
)

func TestParseName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in    string
		label string
		chain domain.Chain
		ok    bool
	}{
		{"pulse.eth", "pulse", domain.ChainEthereum, true},
		{"pulse.sol", "pulse", domain.ChainSolana, true},
		{"pulse.near", "pulse", domain.ChainNear, true},
		{"pulse.base.eth", "pulse", domain.ChainBase, true},
		{"pulse.arb", "pulse", domain.ChainArbitrum, true},
		{"  Pulse.ETH ", "pulse", domain.ChainEthereum, true},
		{"pulse", "", "", false},
		{".eth", "", "", false},
		{"a.b.eth", "", "", false},
		{"pulse.xyz", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range cases {
		label, chain, ok := ParseName(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if label != tc.label || chain != tc.chain {
			t.Fatalf("%q: expected (%q, %s), got (%q, %s)", tc.in, tc.label, tc.chain, label, chain)
		}
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		chain domain.Chain
		label string
		want  string
	}{
		{domain.ChainEthereum, "abc", "641"},
		{domain.ChainEthereum, "abcd", "161"},
		{domain.ChainEthereum, "pulse", "9"},
		{domain.ChainSolana, "a", "751"},
		{domain.ChainSolana, "pulse", "21"},
		{domain.ChainNear, "pulse", "1.5"},
		{domain.ChainBase, "pulse", "1.1"},
		{domain.ChainArbitrum, "pulse", "9"},
	}

	for _, tc := range cases {
		got := Price(tc.chain, tc.label)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("%s %q: expected %s, got %s", tc.chain, tc.label, tc.want, got)
		}
	}
}

type stubReader struct {
	available bool
	premium   bool
	err       error
}

func (r stubReader) Available(context.Context, string) (bool, bool, error) {
	return r.available, r.premium, r.err
}

func TestChecker_CheckNames(t *testing.T) {
	t.Parallel()

	t.Run("resolves parseable names", func(t *testing.T) {
		checker := NewChecker(map[domain.Chain]RegistryReader{
			domain.ChainEthereum: stubReader{available: true},
			domain.ChainNear:     stubReader{available: false},
		})

		results := checker.CheckNames(context.Background(), []string{"pulse.eth", "pulse.near", "not-a-name"})
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}

		byDomain := map[string]CheckResult{}
		for _, res := range results {
			byDomain[res.Domain] = res
		}

		eth := byDomain["pulse.eth"]
		if !eth.Available {
			t.Fatalf("expected pulse.eth available")
		}
		if eth.PriceUSD == nil || !eth.PriceUSD.Equal(decimal.NewFromInt(9)) {
			t.Fatalf("expected price 9 for pulse.eth, got %v", eth.PriceUSD)
		}

		near := byDomain["pulse.near"]
		if near.Available {
			t.Fatalf("expected pulse.near unavailable")
		}
		if near.PriceUSD != nil {
			t.Fatalf("expected no price for unavailable name")
		}
	})

	t.Run("lookup failure degrades to unavailable", func(t *testing.T) {
		checker := NewChecker(map[domain.Chain]RegistryReader{
			domain.ChainEthereum: stubReader{err: errors.New("rpc down")},
		})

		results := checker.CheckNames(context.Background(), []string{"pulse.eth"})
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Available {
			t.Fatalf("expected degraded result to be unavailable")
		}
	})

	t.Run("missing reader degrades to unavailable", func(t *testing.T) {
		checker := NewChecker(nil)
		res := checker.CheckName(context.Background(), "pulse", domain.ChainSolana)
		if res.Available {
			t.Fatalf("expected unavailable without a reader")
		}
		if res.Domain != "pulse.sol" {
			t.Fatalf("expected domain pulse.sol, got %s", res.Domain)
		}
	})
}
