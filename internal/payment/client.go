package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const (
	createSessionTimeout = 15 * time.Second
	getSessionTimeout    = 5 * time.Second

	// Session terminal states reported by the processor.
	SessionCompleted = "COMPLETED"
	SessionExpired   = "EXPIRED"
)

// usdcMinorUnits is the scale of the settlement asset (USDC, 6 decimals).
const usdcMinorUnits = 6

// Session is a freshly created checkout session.
type Session struct {
	ID  string
	URL string
}

// SessionStatus is the processor's view of an existing session.
type SessionStatus struct {
	Status    string
	PaymentID string
}

// Client talks to the PingPay checkout API.
type Client struct {
	baseURL        string
	appURL         string
	apiKey         string
	publishableKey string
	http           *http.Client
}

func NewClient(baseURL, appURL, apiKey, publishableKey string) *Client {
	return &Client{
		baseURL:        baseURL,
		appURL:         appURL,
		apiKey:         apiKey,
		publishableKey: publishableKey,
		http:           &http.Client{},
	}
}

type createSessionRequest struct {
	Amount     string            `json:"amount"`
	Asset      sessionAsset      `json:"asset"`
	SuccessURL string            `json:"successUrl"`
	CancelURL  string            `json:"cancelUrl"`
	Metadata   map[string]string `json:"metadata"`
}

type sessionAsset struct {
	Chain  string `json:"chain"`
	Symbol string `json:"symbol"`
}

type createSessionResponse struct {
	Session struct {
		SessionID  string `json:"sessionId"`
		SessionURL string `json:"sessionUrl"`
	} `json:"session"`
	SessionURL string `json:"sessionUrl"`
}

type getSessionResponse struct {
	Session struct {
		SessionID string  `json:"sessionId"`
		Status    string  `json:"status"`
		PaymentID *string `json:"paymentId"`
	} `json:"session"`
}

// CreateSession opens a checkout session for the given USD amount, charged in
// the settlement asset's minor units.
func (c *Client) CreateSession(ctx context.Context, amountUSD decimal.Decimal, orderID string) (Session, error) {
	amount := amountUSD.Shift(usdcMinorUnits).Ceil().String()

	body, err := json.Marshal(createSessionRequest{
		Amount:     amount,
		Asset:      sessionAsset{Chain: "NEAR", Symbol: "USDC"},
		SuccessURL: fmt.Sprintf("%s/payment/callback?orderId=%s", c.appURL, url.QueryEscape(orderID)),
		CancelURL:  fmt.Sprintf("%s/checkout/%s", c.appURL, url.PathEscape(orderID)),
		Metadata:   map[string]string{"orderId": orderID},
	})
	if err != nil {
		return Session{}, fmt.Errorf("encode session request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, createSessionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Session{}, fmt.Errorf("create session: status %d: %s", resp.StatusCode, detail)
	}

	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Session{}, fmt.Errorf("decode session response: %w", err)
	}
	sessionURL := out.SessionURL
	if sessionURL == "" {
		sessionURL = out.Session.SessionURL
	}
	return Session{ID: out.Session.SessionID, URL: sessionURL}, nil
}

// GetSession fetches the current processor-side status of a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (SessionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, getSessionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return SessionStatus{}, err
	}
	req.Header.Set("x-publishable-key", c.publishableKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SessionStatus{}, fmt.Errorf("get session: status %d", resp.StatusCode)
	}

	var out getSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SessionStatus{}, fmt.Errorf("decode session status: %w", err)
	}

	status := SessionStatus{Status: out.Session.Status}
	if out.Session.PaymentID != nil {
		status.PaymentID = *out.Session.PaymentID
	}
	return status, nil
}
