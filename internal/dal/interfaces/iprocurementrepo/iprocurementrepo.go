package iprocurementrepo

import (
	"context"

	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
)

// IProcurementRepository is an interface for the procurement item postgres
// repository.
type IProcurementRepository interface {
	// BulkInsert writes the whole batch in one statement. Rows whose
	// (order id, line number) pair already exists are skipped, so replaying
	// a batch for an already-populated order inserts nothing.
	BulkInsert(
		ctx context.Context,
		items []procurementitem.ProcurementItem,
	) ([]procurementitem.ProcurementItem, error)

	Query(
		ctx context.Context,
		filter *procurementitem.QueryProcurementItemsModel,
	) ([]procurementitem.ProcurementItem, error)

	// CountByOrder reports how many procurement rows an order owns. Used by
	// the idempotent retry path to detect an earlier partial failure.
	CountByOrder(ctx context.Context, orderID int64) (int, error)
}
