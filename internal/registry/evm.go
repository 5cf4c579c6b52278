package registry

import (
	"bytes"
	"context"
	"fmt"
)

// ENS registry on Ethereum mainnet; a name is available when its node has no
// owner.
const ensRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// Basenames registrar used for availability reads on Base.
const basenamesRegistrar = "0x4cCb0BB02FCABA27e82a56646E81d8c5bC4119a5"

// premiumLabelLen marks short names as premium across all chains.
const premiumLabelLen = 3

// ENSReader answers .eth availability from the ENS registry.
type ENSReader struct {
	client *ethClient
}

func NewENSReader(rpcURL string) *ENSReader {
	return &ENSReader{client: newEthClient(rpcURL)}
}

func (r *ENSReader) Available(ctx context.Context, label string) (bool, bool, error) {
	node := namehash(label + ".eth")
	data := append(selector("owner(bytes32)"), node[:]...)

	ret, err := r.client.call(ctx, ensRegistry, data)
	if err != nil {
		return false, false, err
	}
	if len(ret) != 32 {
		return false, false, fmt.Errorf("unexpected owner() return length %d", len(ret))
	}

	available := bytes.Equal(ret, make([]byte, 32))
	return available, premium(label), nil
}

// AvailableReader answers availability through a registrar's
// available(string) view. Base and Arbitrum registrars share the shape.
type AvailableReader struct {
	client   *ethClient
	contract string
}

func NewBasenamesReader(rpcURL string) *AvailableReader {
	return &AvailableReader{client: newEthClient(rpcURL), contract: basenamesRegistrar}
}

func NewAvailableReader(rpcURL, contract string) *AvailableReader {
	return &AvailableReader{client: newEthClient(rpcURL), contract: contract}
}

func (r *AvailableReader) Available(ctx context.Context, label string) (bool, bool, error) {
	data := append(selector("available(string)"), encodeString(label)...)

	ret, err := r.client.call(ctx, r.contract, data)
	if err != nil {
		return false, false, err
	}
	if len(ret) != 32 {
		return false, false, fmt.Errorf("unexpected available() return length %d", len(ret))
	}

	return ret[31] == 1, premium(label), nil
}

func premium(label string) bool {
	return len(label) <= premiumLabelLen
}
