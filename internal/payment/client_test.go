package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateSession(t *testing.T) {
	t.Parallel()

	var got createSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "sk_test", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{
				"sessionId":  "sess-42",
				"sessionUrl": "https://pay.example/sess-42",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://app.example", "sk_test", "pk_test")

	session, err := client.CreateSession(context.Background(), decimal.NewFromFloat(1.5), "ord-1")
	require.NoError(t, err)

	assert.Equal(t, "sess-42", session.ID)
	assert.Equal(t, "https://pay.example/sess-42", session.URL)

	// $1.50 in USDC minor units.
	assert.Equal(t, "1500000", got.Amount)
	assert.Equal(t, sessionAsset{Chain: "NEAR", Symbol: "USDC"}, got.Asset)
	assert.Equal(t, "https://app.example/payment/callback?orderId=ord-1", got.SuccessURL)
	assert.Equal(t, "ord-1", got.Metadata["orderId"])
}

func TestClient_CreateSession_RoundsFractionalMinorUnits(t *testing.T) {
	t.Parallel()

	var got createSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"session": map[string]any{"sessionId": "s"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://app.example", "sk", "pk")

	_, err := client.CreateSession(context.Background(), decimal.RequireFromString("0.0000001"), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Amount)
}

func TestClient_CreateSession_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"insufficient balance"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://app.example", "sk", "pk")

	_, err := client.CreateSession(context.Background(), decimal.NewFromInt(9), "ord-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestClient_GetSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions/sess-42", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get("x-publishable-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{
				"sessionId": "sess-42",
				"status":    SessionCompleted,
				"paymentId": "pay-7",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://app.example", "sk_test", "pk_test")

	status, err := client.GetSession(context.Background(), "sess-42")
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, status.Status)
	assert.Equal(t, "pay-7", status.PaymentID)
}

func TestClient_GetSession_NullPaymentID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"session": map[string]any{"sessionId": "sess-42", "status": "PENDING"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://app.example", "sk", "pk")

	status, err := client.GetSession(context.Background(), "sess-42")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", status.Status)
	assert.Empty(t, status.PaymentID)
}
