package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/collinsville22/pingmart/internal/app"
	"github.com/collinsville22/pingmart/internal/domain"
)

// OrderCreator is the minimal interface needed to create an order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (app.CreateOrderResult, error)
}

// HandleCreateOrder returns an HTTP handler for creating orders.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			Name:         req.Name,
			Chain:        domain.Chain(req.Chain),
			OwnerAddress: req.OwnerAddress,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := createOrderResponse{
			Order:           toOrderView(res.Order),
			PaymentURL:      res.PaymentURL,
			RegistrationURL: res.RegistrationURL,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// OrderGetter is the minimal interface needed to read an order with its events.
type OrderGetter interface {
	GetOrder(ctx context.Context, orderID string) (app.OrderWithEvents, error)
}

// HandleGetOrder returns an HTTP handler for fetching one order and its event
// log. The read is also the polling trigger for pending payments.
func HandleGetOrder(svc OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		res, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		events := make([]eventView, 0, len(res.Events))
		for _, ev := range res.Events {
			events = append(events, eventView{
				Type:      ev.EventType,
				Payload:   ev.Payload,
				CreatedAt: ev.CreatedAt,
			})
		}

		resp := getOrderResponse{
			Order:  toOrderView(res.Order),
			Events: events,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseOrderPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "orders" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type createOrderRequest struct {
	Name         string `json:"name"`
	Chain        string `json:"chain"`
	OwnerAddress string `json:"owner_address"`
}

type orderView struct {
	ID           string     `json:"id"`
	Domain       string     `json:"domain"`
	Chain        string     `json:"chain"`
	Years        int        `json:"years"`
	PriceUSD     string     `json:"price_usd"`
	Status       string     `json:"status"`
	OwnerAddress string     `json:"owner_address"`
	Error        *string    `json:"error,omitempty"`
	TxHash       *string    `json:"tx_hash,omitempty"`
	SwapTxHash   *string    `json:"swap_tx_hash,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

func toOrderView(order domain.Order) orderView {
	return orderView{
		ID:           order.ID,
		Domain:       order.Domain,
		Chain:        string(order.Chain),
		Years:        order.Years,
		PriceUSD:     order.PriceUSD.StringFixed(2),
		Status:       string(order.Status),
		OwnerAddress: order.OwnerAddress,
		Error:        order.RegistrationError,
		TxHash:       order.RegistrationTx,
		SwapTxHash:   order.SwapTx,
		CreatedAt:    order.CreatedAt,
		PaidAt:       order.PaidAt,
		RegisteredAt: order.RegisteredAt,
	}
}

type createOrderResponse struct {
	Order           orderView `json:"order"`
	PaymentURL      string    `json:"payment_url"`
	RegistrationURL string    `json:"registration_url,omitempty"`
}

type eventView struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type getOrderResponse struct {
	Order  orderView   `json:"order"`
	Events []eventView `json:"events"`
}
