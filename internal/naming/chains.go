package naming

import (
	"strings"

	"github.com/collinsville22/pingmart/internal/domain"
)

// ChainInfo describes one supported registry for display and routing.
type ChainInfo struct {
	ID              domain.Chain
	Name            string
	TLD             string
	RegistrationURL string
}

var chainInfos = map[domain.Chain]ChainInfo{
	domain.ChainEthereum: {
		ID:              domain.ChainEthereum,
		Name:            "Ethereum",
		TLD:             ".eth",
		RegistrationURL: "https://app.ens.domains/",
	},
	domain.ChainSolana: {
		ID:              domain.ChainSolana,
		Name:            "Solana",
		TLD:             ".sol",
		RegistrationURL: "https://www.sns.id/",
	},
	domain.ChainNear: {
		ID:              domain.ChainNear,
		Name:            "NEAR",
		TLD:             ".near",
		RegistrationURL: "https://near.org/",
	},
	domain.ChainBase: {
		ID:              domain.ChainBase,
		Name:            "Base",
		TLD:             ".base.eth",
		RegistrationURL: "https://www.base.org/names",
	},
	domain.ChainArbitrum: {
		ID:              domain.ChainArbitrum,
		Name:            "Arbitrum",
		TLD:             ".arb",
		RegistrationURL: "https://arb.space.id/",
	},
}

// Info returns the static chain table entry.
func Info(chain domain.Chain) ChainInfo {
	return chainInfos[chain]
}

// ParseName splits a full name like "pulse.near" into its label and chain.
// ".base.eth" must be tried before ".eth".
func ParseName(full string) (label string, chain domain.Chain, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(full))
	for _, c := range []domain.Chain{domain.ChainBase, domain.ChainArbitrum, domain.ChainEthereum, domain.ChainSolana, domain.ChainNear} {
		tld := chainInfos[c].TLD
		if strings.HasSuffix(lower, tld) {
			label = strings.TrimSuffix(lower, tld)
			if label == "" || strings.Contains(label, ".") {
				return "", "", false
			}
			return label, c, true
		}
	}
	return "", "", false
}
