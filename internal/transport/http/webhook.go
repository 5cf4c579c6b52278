package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/collinsville22/pingmart/internal/payment"
	"go.uber.org/zap"
)

const (
	signatureHeader = "x-ping-signature"
	timestampHeader = "x-ping-timestamp"

	maxWebhookBody = 1 << 20
)

// PaymentConfirmer is the orchestrator surface the webhook drives.
type PaymentConfirmer interface {
	FindOrderByPaymentRef(ctx context.Context, ref string) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, orderID, paymentRef, source string) error
	RecordEvent(ctx context.Context, orderID, eventType string, payload any) error
}

// SessionVerifier re-verifies a checkout session against the processor before
// a webhook signal is trusted.
type SessionVerifier interface {
	Verify(ctx context.Context, sessionID string) payment.Verification
}

// HandlePingPayWebhook returns the processor callback handler. It always
// responds 200 with {"received":true}: the webhook is advisory, and the
// polling path catches anything dropped here.
func HandlePingPayWebhook(svc PaymentConfirmer, verifier SessionVerifier, secret string, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		defer writeReceived(w)

		if r.Method != http.MethodPost {
			return
		}

		rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			return
		}

		timestamp := r.Header.Get(timestampHeader)
		signature := r.Header.Get(signatureHeader)
		if !validSignature(secret, rawBody, timestamp, signature) {
			logger.Warn("webhook signature rejected")
			return
		}

		var event webhookEvent
		if err := json.Unmarshal(rawBody, &event); err != nil || event.ResourceID == "" {
			return
		}
		if event.Type != "payment.success" && event.Type != "checkout.session.completed" {
			return
		}

		ctx := r.Context()
		order, err := svc.FindOrderByPaymentRef(ctx, event.ResourceID)
		if err != nil {
			logger.Warn("webhook order lookup failed", zap.Error(err))
			return
		}
		if order == nil || order.Status.AtOrPastConfirmed() || order.SessionID == nil {
			return
		}

		if err := svc.RecordEvent(ctx, order.ID, domain.EventWebhookReceived, event); err != nil {
			logger.Warn("webhook event append failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}

		v := verifier.Verify(ctx, *order.SessionID)
		if !v.Verified {
			_ = svc.RecordEvent(ctx, order.ID, domain.EventPaymentUnverified, map[string]any{
				"resourceId": event.ResourceID,
			})
			return
		}

		paymentRef := v.PaymentID
		if paymentRef == "" {
			paymentRef = event.ResourceID
		}
		if err := svc.ConfirmPayment(ctx, order.ID, paymentRef, "webhook"); err != nil {
			logger.Warn("webhook confirmation failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}
}

// validSignature checks the HMAC-SHA256 of "timestamp.body" against the
// hex-encoded signature header using a constant-time compare.
func validSignature(secret string, body []byte, timestamp, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func writeReceived(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}

type webhookEvent struct {
	Type       string `json:"type"`
	ResourceID string `json:"resourceId"`
}
