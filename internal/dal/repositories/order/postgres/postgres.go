package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id            int64           `db:"id"`
	DisplayId     string          `db:"display_id"`
	InvoiceNo     string          `db:"invoice_no"`
	CustomerRef   *string         `db:"customer_ref"`
	PaymentRef    string          `db:"payment_ref"`
	Status        string          `db:"status"`
	PaymentStatus string          `db:"payment_status"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	ShippingInfo  []byte          `db:"shipping_info"`
	Note          string          `db:"note"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:            o.Id,
		DisplayID:     o.DisplayId,
		InvoiceNo:     o.InvoiceNo,
		CustomerRef:   o.CustomerRef,
		PaymentRef:    o.PaymentRef,
		Status:        status,
		PaymentStatus: paymentStatus,
		TotalAmount:   o.TotalAmount,
		ShippingInfo:  json.RawMessage(o.ShippingInfo),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

type OrderRepository struct {
	conn postgres.Querier
}

func NewOrderRepository(conn postgres.Querier) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

const orderColumns = `
	id,
	display_id,
	invoice_no,
	customer_ref,
	payment_ref,
	status,
	payment_status,
	total_amount,
	shipping_info,
	note,
	created_at,
	updated_at
`

// Insert persists a new order and returns it with its storage id.
func (r *OrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	sql := `
		INSERT INTO orders (
			display_id,
			invoice_no,
			customer_ref,
			payment_ref,
			status,
			payment_status,
			total_amount,
			shipping_info,
			note,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	row := r.conn.QueryRow(ctx, sql,
		o.DisplayID,
		o.InvoiceNo,
		o.CustomerRef,
		o.PaymentRef,
		o.Status.String(),
		o.PaymentStatus.String(),
		o.TotalAmount,
		[]byte(o.ShippingInfo),
		o.Note,
		o.CreatedAt,
		o.UpdatedAt,
	)

	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return order.Order{}, fmt.Errorf("insert order: %w", order.ErrDuplicatePaymentRef)
		}

		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetByPaymentRef returns the order settled against the given payment
// reference, or nil when none exists.
func (r *OrderRepository) GetByPaymentRef(
	ctx context.Context,
	paymentRef string,
) (*order.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE payment_ref = $1`

	var dal OrderDal
	err := r.conn.QueryRow(ctx, sql, paymentRef).Scan(
		&dal.Id,
		&dal.DisplayId,
		&dal.InvoiceNo,
		&dal.CustomerRef,
		&dal.PaymentRef,
		&dal.Status,
		&dal.PaymentStatus,
		&dal.TotalAmount,
		&dal.ShippingInfo,
		&dal.Note,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get order by payment ref: %w", err)
	}

	return dal.ToModel()
}

// Query retrieves orders based on filter criteria.
func (r *OrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	builder := sq.Select(
		"id",
		"display_id",
		"invoice_no",
		"customer_ref",
		"payment_ref",
		"status",
		"payment_status",
		"total_amount",
		"shipping_info",
		"note",
		"created_at",
		"updated_at",
	).
		From("orders").
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.CustomerRefs) > 0 {
		builder = builder.Where(sq.Eq{"customer_ref": filter.CustomerRefs})
	}
	if filter.PaymentRef != "" {
		builder = builder.Where(sq.Eq{"payment_ref": filter.PaymentRef})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.DisplayId,
			&dal.InvoiceNo,
			&dal.CustomerRef,
			&dal.PaymentRef,
			&dal.Status,
			&dal.PaymentStatus,
			&dal.TotalAmount,
			&dal.ShippingInfo,
			&dal.Note,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
