package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `
id, domain, tld, chain, years, price_usd::text, status,
session_id, payment_id, owner_address,
registration_error, registration_tx, swap_tx,
created_at, updated_at, paid_at, registered_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (
	id, domain, tld, chain, years, price_usd, status,
	session_id, owner_address, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		order.ID, order.Domain, order.TLD, string(order.Chain), order.Years,
		order.PriceUSD.String(), string(order.Status),
		order.SessionID, order.OwnerAddress, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create order: duplicate id: %w", err)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) FindOrderByPaymentRef(ctx context.Context, ref string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 OR payment_id = $1`

	order, err := scanOrder(r.queryRow(ctx, query, ref))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by payment ref: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, id string, update domain.OrderUpdate) error {
	sets := []string{"status = $2", "updated_at = now()"}
	args := []any{id, string(update.Status)}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.PaymentID != nil {
		appendSet("payment_id", *update.PaymentID)
	}
	if update.PaidAt != nil {
		appendSet("paid_at", *update.PaidAt)
	}
	if update.RegisteredAt != nil {
		appendSet("registered_at", *update.RegisteredAt)
	}
	if update.RegistrationTx != nil {
		appendSet("registration_tx", *update.RegistrationTx)
	}
	if update.SwapTx != nil {
		appendSet("swap_tx", *update.SwapTx)
	}
	switch {
	case update.ClearRegistrationError:
		sets = append(sets, "registration_error = NULL")
	case update.RegistrationError != nil:
		appendSet("registration_error", *update.RegistrationError)
	}

	stmt := fmt.Sprintf("UPDATE orders SET %s WHERE id = $1", strings.Join(sets, ", "))

	tag, err := r.exec(ctx, stmt, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) AppendEvent(ctx context.Context, orderID, eventType string, payload any) error {
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}
	}

	const stmt = `
INSERT INTO order_events (order_id, event_type, payload)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, orderID, eventType, encoded)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	const query = `
SELECT id, order_id, event_type, payload, created_at
FROM order_events
WHERE order_id = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var e domain.OrderEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if payload != nil {
			e.Payload = json.RawMessage(payload)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var chain, status, price string
	err := row.Scan(
		&o.ID, &o.Domain, &o.TLD, &chain, &o.Years, &price, &status,
		&o.SessionID, &o.PaymentID, &o.OwnerAddress,
		&o.RegistrationError, &o.RegistrationTx, &o.SwapTx,
		&o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.RegisteredAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Chain = domain.Chain(chain)
	o.Status = domain.OrderStatus(status)
	o.PriceUSD, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse price: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
