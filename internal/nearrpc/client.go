// Package nearrpc implements the read-only NEAR JSON-RPC queries the service
// needs: account access keys and fungible-token views. Writes go through the
// custody signer, which lives outside this repository.
package nearrpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const queryTimeout = 10 * time.Second

type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{url: url, http: &http.Client{}}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

func (c *Client) query(ctx context.Context, params any) (json.RawMessage, error) {
	result, rpcErr, err := c.queryRaw(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(rpcErr) > 0 {
		return nil, fmt.Errorf("near rpc error: %s", rpcErr)
	}
	return result, nil
}

func (c *Client) queryRaw(ctx context.Context, params any) (result, rpcErr json.RawMessage, err error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "query", Params: params})
	if err != nil {
		return nil, nil, fmt.Errorf("encode rpc request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("near rpc: %w", err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("decode rpc response: %w", err)
	}
	return out.Result, out.Error, nil
}

type rpcErrorDetail struct {
	Cause struct {
		Name string `json:"name"`
	} `json:"cause"`
}

// AccountExists reports whether an account is present on chain. An
// UNKNOWN_ACCOUNT error from the node means the account does not exist; any
// other error is a lookup failure.
func (c *Client) AccountExists(ctx context.Context, accountID string) (bool, error) {
	_, rpcErr, err := c.queryRaw(ctx, map[string]any{
		"request_type": "view_account",
		"finality":     "final",
		"account_id":   accountID,
	})
	if err != nil {
		return false, err
	}
	if len(rpcErr) == 0 {
		return true, nil
	}

	var detail rpcErrorDetail
	if err := json.Unmarshal(rpcErr, &detail); err == nil && detail.Cause.Name == "UNKNOWN_ACCOUNT" {
		return false, nil
	}
	return false, fmt.Errorf("near rpc error: %s", rpcErr)
}

type accessKeyListResult struct {
	Keys []struct {
		PublicKey string `json:"public_key"`
	} `json:"keys"`
}

// FirstPublicKey resolves the first full-access public key registered on an
// account. NEAR account creation installs the buyer's key on the new account,
// so the buyer-supplied account identifier is resolved to a key first.
func (c *Client) FirstPublicKey(ctx context.Context, accountID string) (string, error) {
	result, err := c.query(ctx, map[string]any{
		"request_type": "view_access_key_list",
		"finality":     "final",
		"account_id":   accountID,
	})
	if err != nil {
		return "", err
	}

	var keys accessKeyListResult
	if err := json.Unmarshal(result, &keys); err != nil {
		return "", fmt.Errorf("decode access key list: %w", err)
	}
	if len(keys.Keys) == 0 {
		return "", fmt.Errorf("could not fetch public key for %s", accountID)
	}
	return keys.Keys[0].PublicKey, nil
}

// The node encodes call results as a JSON array of byte values, not base64.
type callFunctionResult struct {
	Result []int `json:"result"`
}

// CallFunction invokes a view method on a contract and returns its raw result.
func (c *Client) CallFunction(ctx context.Context, contractID, method string, args any) ([]byte, error) {
	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode call args: %w", err)
	}

	result, err := c.query(ctx, map[string]any{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   contractID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(encodedArgs),
	})
	if err != nil {
		return nil, err
	}

	var call callFunctionResult
	if err := json.Unmarshal(result, &call); err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	out := make([]byte, len(call.Result))
	for i, b := range call.Result {
		out[i] = byte(b)
	}
	return out, nil
}

// FTBalance returns an account's balance on a NEP-141 token contract, in the
// token's minor units.
func (c *Client) FTBalance(ctx context.Context, tokenContract, accountID string) (string, error) {
	raw, err := c.CallFunction(ctx, tokenContract, "ft_balance_of", map[string]string{"account_id": accountID})
	if err != nil {
		return "", err
	}
	var balance string
	if err := json.Unmarshal(raw, &balance); err != nil {
		return "", fmt.Errorf("decode ft balance: %w", err)
	}
	if balance == "" {
		return "0", nil
	}
	return balance, nil
}
