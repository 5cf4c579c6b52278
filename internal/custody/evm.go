package custody

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// evmSigner is the generic EVM-chain surface of the custody signer: one route
// prefix per chain, one registrar contract per controller.
type evmSigner struct {
	client   *Client
	chain    string
	contract string
}

type commitmentRequest struct {
	Contract    string `json:"contract"`
	Label       string `json:"label"`
	Owner       string `json:"owner"`
	DurationSec int64  `json:"duration_sec,omitempty"`
	Secret      string `json:"secret"`
	Resolver    string `json:"resolver,omitempty"`
}

type commitmentResponse struct {
	Commitment string `json:"commitment"`
}

func (s evmSigner) makeCommitment(ctx context.Context, req commitmentRequest) ([32]byte, error) {
	req.Contract = s.contract
	var resp commitmentResponse
	if err := s.client.post(ctx, "/v1/"+s.chain+"/commitment", req, &resp); err != nil {
		return [32]byte{}, err
	}
	return decodeHash(resp.Commitment)
}

type commitRequest struct {
	Contract   string `json:"contract"`
	Commitment string `json:"commitment"`
}

type txResponse struct {
	TxHash string `json:"tx_hash"`
}

func (s evmSigner) commit(ctx context.Context, commitment [32]byte) (string, error) {
	var resp txResponse
	err := s.client.post(ctx, "/v1/"+s.chain+"/commit", commitRequest{
		Contract:   s.contract,
		Commitment: "0x" + hex.EncodeToString(commitment[:]),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TxHash, nil
}

type rentPriceRequest struct {
	Contract    string `json:"contract"`
	Label       string `json:"label"`
	DurationSec int64  `json:"duration_sec"`
}

type rentPriceResponse struct {
	PriceWei string `json:"price_wei"`
}

func (s evmSigner) rentPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error) {
	var resp rentPriceResponse
	err := s.client.post(ctx, "/v1/"+s.chain+"/rent-price", rentPriceRequest{
		Contract:    s.contract,
		Label:       label,
		DurationSec: durationSec,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return parseWei(resp.PriceWei)
}

type registerRequest struct {
	Contract    string `json:"contract"`
	Label       string `json:"label"`
	Owner       string `json:"owner"`
	DurationSec int64  `json:"duration_sec"`
	Secret      string `json:"secret,omitempty"`
	Resolver    string `json:"resolver,omitempty"`
	Addr        string `json:"addr,omitempty"`
	ValueWei    string `json:"value_wei"`
}

func (s evmSigner) register(ctx context.Context, req registerRequest) (string, error) {
	req.Contract = s.contract
	var resp txResponse
	if err := s.client.post(ctx, "/v1/"+s.chain+"/register", req, &resp); err != nil {
		return "", err
	}
	return resp.TxHash, nil
}

type waitMinedRequest struct {
	TxHash string `json:"tx_hash"`
}

func (s evmSigner) waitMined(ctx context.Context, txHash string) error {
	return s.client.post(ctx, "/v1/"+s.chain+"/wait-mined", waitMinedRequest{TxHash: txHash}, nil)
}

// ENSRegistrar drives the ENS registrar controller on Ethereum mainnet.
type ENSRegistrar struct {
	signer evmSigner
}

func NewENSRegistrar(client *Client, contract string) *ENSRegistrar {
	return &ENSRegistrar{signer: evmSigner{client: client, chain: "ethereum", contract: contract}}
}

func (r *ENSRegistrar) MakeCommitment(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string) ([32]byte, error) {
	return r.signer.makeCommitment(ctx, commitmentRequest{
		Label:       label,
		Owner:       owner,
		DurationSec: durationSec,
		Secret:      encodeSecret(secret),
		Resolver:    resolver,
	})
}

func (r *ENSRegistrar) Commit(ctx context.Context, commitment [32]byte) (string, error) {
	return r.signer.commit(ctx, commitment)
}

func (r *ENSRegistrar) RentPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error) {
	return r.signer.rentPrice(ctx, label, durationSec)
}

func (r *ENSRegistrar) Register(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver string, value *big.Int) (string, error) {
	return r.signer.register(ctx, registerRequest{
		Label:       label,
		Owner:       owner,
		DurationSec: durationSec,
		Secret:      encodeSecret(secret),
		Resolver:    resolver,
		ValueWei:    value.String(),
	})
}

func (r *ENSRegistrar) WaitMined(ctx context.Context, txHash string) error {
	return r.signer.waitMined(ctx, txHash)
}

// ARBRegistrar drives the .arb registrar controller on Arbitrum One. Its
// commitment binds only name, owner and secret.
type ARBRegistrar struct {
	signer evmSigner
}

func NewARBRegistrar(client *Client, contract string) *ARBRegistrar {
	return &ARBRegistrar{signer: evmSigner{client: client, chain: "arbitrum", contract: contract}}
}

func (r *ARBRegistrar) MakeCommitment(ctx context.Context, label, owner string, secret [32]byte) ([32]byte, error) {
	return r.signer.makeCommitment(ctx, commitmentRequest{
		Label:  label,
		Owner:  owner,
		Secret: encodeSecret(secret),
	})
}

func (r *ARBRegistrar) Commit(ctx context.Context, commitment [32]byte) (string, error) {
	return r.signer.commit(ctx, commitment)
}

func (r *ARBRegistrar) RentPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error) {
	return r.signer.rentPrice(ctx, label, durationSec)
}

func (r *ARBRegistrar) RegisterWithConfig(ctx context.Context, label, owner string, durationSec int64, secret [32]byte, resolver, addr string, value *big.Int) (string, error) {
	return r.signer.register(ctx, registerRequest{
		Label:       label,
		Owner:       owner,
		DurationSec: durationSec,
		Secret:      encodeSecret(secret),
		Resolver:    resolver,
		Addr:        addr,
		ValueWei:    value.String(),
	})
}

func (r *ARBRegistrar) WaitMined(ctx context.Context, txHash string) error {
	return r.signer.waitMined(ctx, txHash)
}

// BaseRegistrar drives the Basenames registrar on Base. No commitment phase.
type BaseRegistrar struct {
	signer evmSigner
}

func NewBaseRegistrar(client *Client, contract string) *BaseRegistrar {
	return &BaseRegistrar{signer: evmSigner{client: client, chain: "base", contract: contract}}
}

func (r *BaseRegistrar) RegisterPrice(ctx context.Context, label string, durationSec int64) (*big.Int, error) {
	return r.signer.rentPrice(ctx, label, durationSec)
}

func (r *BaseRegistrar) Register(ctx context.Context, label, owner string, durationSec int64, resolver string, value *big.Int) (string, error) {
	return r.signer.register(ctx, registerRequest{
		Label:       label,
		Owner:       owner,
		DurationSec: durationSec,
		Resolver:    resolver,
		ValueWei:    value.String(),
	})
}

func (r *BaseRegistrar) WaitMined(ctx context.Context, txHash string) error {
	return r.signer.waitMined(ctx, txHash)
}

func encodeSecret(secret [32]byte) string {
	return "0x" + hex.EncodeToString(secret[:])
}

func decodeHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, fmt.Errorf("decode commitment %q: %w", s, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("commitment %q is %d bytes, want 32", s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func parseWei(s string) (*big.Int, error) {
	price, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount %q", s)
	}
	return price, nil
}
