package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// OrderRetrier is the minimal interface needed to retry a failed registration.
type OrderRetrier interface {
	Retry(ctx context.Context, orderID string) error
}

// HandleRetry returns an HTTP handler that re-enters the fulfillment flow for
// an order stuck in REGISTRATION_FAILED. The response acknowledges acceptance
// only; callers observe the outcome by polling the order.
func HandleRetry(svc OrderRetrier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseRetryPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err := svc.Retry(r.Context(), orderID); err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(retryResponse{ID: orderID, Accepted: true})
	}
}

func parseRetryPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "orders" || parts[2] != "retry" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type retryResponse struct {
	ID       string `json:"id"`
	Accepted bool   `json:"accepted"`
}
