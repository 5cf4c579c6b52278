package domain

// Chain identifies one of the five supported name registries.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainNear     Chain = "near"
	ChainBase     Chain = "base"
	ChainArbitrum Chain = "arbitrum"
)

// Chains lists every supported chain in display order.
var Chains = []Chain{ChainEthereum, ChainSolana, ChainNear, ChainBase, ChainArbitrum}

func (c Chain) Valid() bool {
	switch c {
	case ChainEthereum, ChainSolana, ChainNear, ChainBase, ChainArbitrum:
		return true
	}
	return false
}

// NeedsSwap reports whether registering on this chain requires bridging the
// settlement asset first. Custody funds live on NEAR, so NEAR registrations
// spend them directly.
func (c Chain) NeedsSwap() bool {
	return c != ChainNear
}
