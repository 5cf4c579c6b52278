package app

import (
	"regexp"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/naming"
	"github.com/gagliardetto/solana-go"
)

var (
	evmAddressRe  = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	nearAccountRe = regexp.MustCompile(`^[a-z0-9_-]+\.near$`)
)

// validateCreateOrder rejects bad input before any state is created. It
// returns the parsed label for the requested name.
func validateCreateOrder(in CreateOrderInput) (label string, err error) {
	if !in.Chain.Valid() {
		return "", domain.ErrInvalidChain
	}

	label, chain, ok := naming.ParseName(in.Name)
	if !ok || chain != in.Chain {
		return "", domain.ErrInvalidName
	}

	if !validOwnerAddress(in.Chain, in.OwnerAddress) {
		return "", domain.ErrInvalidAddress
	}
	return label, nil
}

func validOwnerAddress(chain domain.Chain, address string) bool {
	if address == "" {
		return false
	}
	switch chain {
	case domain.ChainEthereum, domain.ChainBase, domain.ChainArbitrum:
		return evmAddressRe.MatchString(address)
	case domain.ChainSolana:
		_, err := solana.PublicKeyFromBase58(address)
		return err == nil
	case domain.ChainNear:
		// Named accounts or 64-char implicit account ids.
		return nearAccountRe.MatchString(address) || len(address) == 64
	}
	return false
}
