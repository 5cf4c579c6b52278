// Package registry implements the read-only availability lookups against each
// chain's name registry. Lookups never sign anything; failures degrade to
// "unavailable" in the checker.
package registry

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

const ethCallTimeout = 8 * time.Second

// ethClient performs eth_call against one EVM chain's JSON-RPC endpoint.
type ethClient struct {
	url  string
	http *http.Client
}

func newEthClient(url string) *ethClient {
	return &ethClient{url: url, http: &http.Client{}}
}

type ethRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type ethResponse struct {
	Result string          `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// call performs eth_call with the given calldata and returns the raw return
// bytes.
func (c *ethClient) call(ctx context.Context, contract string, data []byte) ([]byte, error) {
	body, err := json.Marshal(ethRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []any{
			map[string]string{"to": contract, "data": "0x" + hex.EncodeToString(data)},
			"latest",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode eth_call: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ethCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eth rpc: %w", err)
	}
	defer resp.Body.Close()

	var out ethResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode eth_call response: %w", err)
	}
	if len(out.Error) > 0 {
		return nil, fmt.Errorf("eth rpc error: %s", out.Error)
	}
	return hex.DecodeString(strings.TrimPrefix(out.Result, "0x"))
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// selector returns the 4-byte function selector for a signature like
// "available(string)".
func selector(signature string) []byte {
	return keccak256([]byte(signature))[:4]
}

// encodeString ABI-encodes a single dynamic string argument.
func encodeString(s string) []byte {
	out := make([]byte, 0, 64+((len(s)+31)/32)*32)
	out = append(out, abiWord(32)...)
	out = append(out, abiWord(uint64(len(s)))...)
	padded := make([]byte, ((len(s)+31)/32)*32)
	copy(padded, s)
	return append(out, padded...)
}

func abiWord(v uint64) []byte {
	word := make([]byte, 32)
	for i := 0; i < 8; i++ {
		word[31-i] = byte(v >> (8 * i))
	}
	return word
}

// namehash implements the ENS name hashing algorithm.
func namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(node[:], labelHash))
	}
	return node
}
