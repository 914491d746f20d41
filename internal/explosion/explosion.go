package explosion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rigbuilders/settlement-svc/internal/catalog"
	"github.com/rigbuilders/settlement-svc/internal/service/models/cartitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/settlement"
)

const defaultLookupTimeout = 3 * time.Second

// Engine turns settled cart lines into procurement drafts. A discrete
// component passes through as a single row; a pre-built system explodes into
// one row per populated build-sheet slot.
type Engine struct {
	catalog catalog.Client
	timeout time.Duration
}

// option is a function that configures the Engine.
type option func(*Engine)

// NewEngine creates a new Engine.
func NewEngine(catalogClient catalog.Client, opts ...option) *Engine {
	e := &Engine{
		catalog: catalogClient,
		timeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithLookupTimeout bounds the catalog spec lookup.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLookupTimeout(d time.Duration) option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// Explode produces procurement drafts for one cart line. Drafts carry no
// order id yet; the orchestrator stamps it after the order row exists.
//
// A pre-built whose specification cannot be resolved (deleted entry,
// malformed catalog data, lookup timeout) yields zero drafts and a
// reconciliation gap instead of failing the settlement.
func (e *Engine) Explode(
	ctx context.Context,
	item cartitem.CartItem,
) ([]procurementitem.ProcurementItem, *settlement.Gap, error) {
	switch item.Kind {
	case cartitem.KindDiscrete:
		return []procurementitem.ProcurementItem{{
			ProductName: item.Name,
			SKU:         item.ID,
			Category:    procurementitem.Category(item.Category),
			Status:      procurementitem.StatusPending,
			CostPrice:   decimal.Zero,
		}}, nil, nil

	case cartitem.KindPrebuilt:
		return e.explodePrebuilt(ctx, item)

	default:
		return nil, nil, fmt.Errorf("explode %q: %w", item.ID, cartitem.ErrInvalidKind)
	}
}

func (e *Engine) explodePrebuilt(
	ctx context.Context,
	item cartitem.CartItem,
) ([]procurementitem.ProcurementItem, *settlement.Gap, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	spec, err := e.catalog.GetSpec(ctx, item.ID)
	if err != nil {
		reason := "spec lookup failed"
		switch {
		case errors.Is(err, catalog.ErrSpecNotFound):
			reason = "spec not found"
		case errors.Is(err, context.DeadlineExceeded):
			reason = "spec lookup timed out"
		}

		slog.Warn("pre-built explosion gap",
			"product_id", item.ID,
			"reason", reason,
			"error", err,
		)

		return nil, &settlement.Gap{
			ProductID:   item.ID,
			ProductName: item.Name,
			Reason:      reason,
		}, nil
	}

	var drafts []procurementitem.ProcurementItem
	for _, slot := range spec.Slots() {
		if slot.Part == "" {
			continue
		}
		drafts = append(drafts, procurementitem.ProcurementItem{
			ProductName: slot.Part,
			Category:    slot.Category,
			Status:      procurementitem.StatusPending,
			CostPrice:   decimal.Zero,
		})
	}

	return drafts, nil, nil
}
