package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Bridge settlement states. The bridge's own settlement is asynchronous, so
// the executor trusts only these terminal statuses, never the initiating
// transfer's confirmation.
const (
	BridgePendingDeposit = "PENDING_DEPOSIT"
	BridgeKnownDeposit   = "KNOWN_DEPOSIT_TX"
	BridgeProcessing     = "PROCESSING"
	BridgeSuccess        = "SUCCESS"
	BridgeRefunded       = "REFUNDED"
	BridgeExpired        = "EXPIRED"
)

const (
	quoteTimeout  = 15 * time.Second
	statusTimeout = 10 * time.Second
)

// QuoteRequest asks the bridge to convert the settlement asset into a
// destination chain's asset and deliver it to the recipient.
type QuoteRequest struct {
	Dry               bool   `json:"dry"`
	SwapType          string `json:"swapType"`
	SlippageTolerance int    `json:"slippageTolerance"`
	OriginAsset       string `json:"originAsset"`
	DepositType       string `json:"depositType"`
	DestinationAsset  string `json:"destinationAsset"`
	Amount            string `json:"amount"`
	RefundTo          string `json:"refundTo"`
	RefundType        string `json:"refundType"`
	Recipient         string `json:"recipient"`
	RecipientType     string `json:"recipientType"`
	Deadline          string `json:"deadline"`
}

// Quote carries the one-time deposit address the platform must fund.
type Quote struct {
	DepositAddress string `json:"depositAddress"`
	AmountIn       string `json:"amountIn"`
	AmountOut      string `json:"amountOut"`
	AmountInUSD    string `json:"amountInUsd"`
	AmountOutUSD   string `json:"amountOutUsd"`
}

type QuoteResponse struct {
	Quote         Quote  `json:"quote"`
	Signature     string `json:"signature"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlationId"`
}

// TxHash accepts the bridge's two hash encodings: a bare string or an object
// carrying a "hash" field.
type TxHash struct {
	Hash string
}

func (t *TxHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Hash = s
		return nil
	}
	var obj struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Hash = obj.Hash
	return nil
}

type SwapDetails struct {
	OriginChainTxHashes      []TxHash `json:"originChainTxHashes"`
	DestinationChainTxHashes []TxHash `json:"destinationChainTxHashes"`
}

type StatusResponse struct {
	Status      string      `json:"status"`
	SwapDetails SwapDetails `json:"swapDetails"`
}

// BridgeClient talks to the cross-chain bridge's HTTP API.
type BridgeClient struct {
	baseURL string
	http    *http.Client
}

func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{baseURL: baseURL, http: &http.Client{}}
}

func (c *BridgeClient) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("encode quote request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v0/quote", bytes.NewReader(body))
	if err != nil {
		return QuoteResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("bridge quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return QuoteResponse{}, fmt.Errorf("bridge quote: status %d: %s", resp.StatusCode, detail)
	}

	var out QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return QuoteResponse{}, fmt.Errorf("decode quote response: %w", err)
	}
	return out, nil
}

func (c *BridgeClient) Status(ctx context.Context, depositAddress string) (StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	endpoint := c.baseURL + "/v0/status?depositAddress=" + url.QueryEscape(depositAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusResponse{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("bridge status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusResponse{}, fmt.Errorf("bridge status: status %d", resp.StatusCode)
	}

	var out StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StatusResponse{}, fmt.Errorf("decode status response: %w", err)
	}
	return out, nil
}
