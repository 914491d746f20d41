package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
)

// ProcurementItemDal represents the procurement item data access layer model.
type ProcurementItemDal struct {
	Id              int64           `db:"id"`
	OrderId         int64           `db:"order_id"`
	LineNo          int             `db:"line_no"`
	ProductName     string          `db:"product_name"`
	Sku             *string         `db:"sku"`
	Category        string          `db:"category"`
	Status          string          `db:"status"`
	DistributorName *string         `db:"distributor_name"`
	CostPrice       decimal.Decimal `db:"cost_price"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// ToModel converts ProcurementItemDal to the service layer model.
func (p *ProcurementItemDal) ToModel() (*procurementitem.ProcurementItem, error) {
	status, err := procurementitem.ParseStatus(p.Status)
	if err != nil {
		return nil, err
	}

	item := &procurementitem.ProcurementItem{
		ID:          p.Id,
		OrderID:     p.OrderId,
		LineNo:      p.LineNo,
		ProductName: p.ProductName,
		Category:    procurementitem.Category(p.Category),
		Status:      status,
		CostPrice:   p.CostPrice,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Sku != nil {
		item.SKU = *p.Sku
	}
	if p.DistributorName != nil {
		item.DistributorName = *p.DistributorName
	}

	return item, nil
}

type ProcurementRepository struct {
	conn postgres.Querier
}

func NewProcurementRepository(conn postgres.Querier) *ProcurementRepository {
	return &ProcurementRepository{
		conn: conn,
	}
}

// BulkInsert inserts the whole procurement batch in one statement and
// returns the rows with their storage ids. Rows whose (order_id, line_no)
// already exist are skipped, so a batch replayed by a concurrent settlement
// retry inserts nothing instead of duplicating the order's rows.
func (r *ProcurementRepository) BulkInsert(
	ctx context.Context,
	items []procurementitem.ProcurementItem,
) ([]procurementitem.ProcurementItem, error) {
	if len(items) == 0 {
		return []procurementitem.ProcurementItem{}, nil
	}

	sql := `
		INSERT INTO procurement_items (
			order_id,
			line_no,
			product_name,
			sku,
			category,
			status,
			cost_price,
			created_at,
			updated_at
		)
		SELECT
			order_id,
			line_no,
			product_name,
			NULLIF(sku, ''),
			category,
			status,
			cost_price::numeric,
			created_at,
			updated_at
		FROM unnest(
			$1::bigint[],
			$2::int[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::text[],
			$7::text[],
			$8::timestamptz[],
			$9::timestamptz[]
		)
		AS t(order_id, line_no, product_name, sku, category, status, cost_price, created_at, updated_at)
		ON CONFLICT (order_id, line_no) DO NOTHING
		RETURNING
			id,
			order_id,
			line_no,
			product_name,
			sku,
			category,
			status,
			distributor_name,
			cost_price,
			created_at,
			updated_at
	`

	orderIds := make([]int64, len(items))
	lineNos := make([]int32, len(items))
	productNames := make([]string, len(items))
	skus := make([]string, len(items))
	categories := make([]string, len(items))
	statuses := make([]string, len(items))
	costPrices := make([]string, len(items))
	createdAts := make([]time.Time, len(items))
	updatedAts := make([]time.Time, len(items))

	for i, item := range items {
		orderIds[i] = item.OrderID
		lineNos[i] = int32(item.LineNo)
		productNames[i] = item.ProductName
		skus[i] = item.SKU
		categories[i] = string(item.Category)
		statuses[i] = item.Status.String()
		costPrices[i] = item.CostPrice.String()
		createdAts[i] = item.CreatedAt
		updatedAts[i] = item.UpdatedAt
	}

	rows, err := r.conn.Query(ctx, sql,
		orderIds,
		lineNos,
		productNames,
		skus,
		categories,
		statuses,
		costPrices,
		createdAts,
		updatedAts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert procurement items: %w", err)
	}
	defer rows.Close()

	var result []procurementitem.ProcurementItem
	for rows.Next() {
		var dal ProcurementItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.LineNo,
			&dal.ProductName,
			&dal.Sku,
			&dal.Category,
			&dal.Status,
			&dal.DistributorName,
			&dal.CostPrice,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procurement item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert procurement dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves procurement items based on filter criteria.
func (r *ProcurementRepository) Query(
	ctx context.Context,
	filter *procurementitem.QueryProcurementItemsModel,
) ([]procurementitem.ProcurementItem, error) {
	builder := sq.Select(
		"id",
		"order_id",
		"line_no",
		"product_name",
		"sku",
		"category",
		"status",
		"distributor_name",
		"cost_price",
		"created_at",
		"updated_at",
	).
		From("procurement_items").
		OrderBy("order_id ASC", "line_no ASC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.OrderIds) > 0 {
		builder = builder.Where(sq.Eq{"order_id": filter.OrderIds})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		builder = builder.Where(sq.Eq{"status": statuses})
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
		return nil, fmt.Errorf("failed to query procurement items: %w", err)
	}
	defer rows.Close()

	var result []procurementitem.ProcurementItem
	for rows.Next() {
		var dal ProcurementItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.LineNo,
			&dal.ProductName,
			&dal.Sku,
			&dal.Category,
			&dal.Status,
			&dal.DistributorName,
			&dal.CostPrice,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procurement item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert procurement dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// CountByOrder reports how many procurement rows an order owns.
func (r *ProcurementRepository) CountByOrder(ctx context.Context, orderID int64) (int, error) {
	sql, args, err := sq.Select("COUNT(*)").
		From("procurement_items").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count procurement items: %w", err)
	}

	return count, nil
}
