package settlementsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"

	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/iorderrepo"
	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/iprocurementrepo"
	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	redisdal "github.com/rigbuilders/settlement-svc/internal/dal/redis"
	orderrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/order/postgres"
	procurementrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/procurementitem/postgres"
	"github.com/rigbuilders/settlement-svc/internal/dal/uow"
	"github.com/rigbuilders/settlement-svc/internal/explosion"
	"github.com/rigbuilders/settlement-svc/internal/sequence"
	"github.com/rigbuilders/settlement-svc/internal/service/models/cartitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/order"
	"github.com/rigbuilders/settlement-svc/internal/service/models/outbox"
	"github.com/rigbuilders/settlement-svc/internal/service/models/procurementitem"
	"github.com/rigbuilders/settlement-svc/internal/service/models/settlement"
	"github.com/rigbuilders/settlement-svc/internal/signature"
)

const (
	defaultInsertTimeout     = 5 * time.Second
	defaultOutboxMaxRetries  = 5
	procurementRetryAttempts = 3

	eventOrderSettled = "order.settled"
)

// unitOfWork scopes order creation and its settled-event row to one
// transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// settlementCache is the best-effort Redis layer: the settle idempotency
// fast-path and the order status cache. A nil cache degrades to Postgres
// lookups everywhere.
type settlementCache interface {
	GetSettledOrderID(ctx context.Context, paymentRef string) (int64, bool)
	StoreSettlement(ctx context.Context, paymentRef string, orderID int64, status string)
	GetOrderStatus(ctx context.Context, orderID int64) (string, bool)
	StoreOrderStatus(ctx context.Context, orderID int64, status string)
}

// SettlementService turns one verified payment event into a durable order
// plus the exploded list of parts to procure for it.
type SettlementService struct {
	pgClient *postgres.Client
	cache    settlementCache

	verifier  *signature.Verifier
	allocator *sequence.Allocator
	engine    *explosion.Engine

	orders      iorderrepo.IOrderRepository
	procurement iprocurementrepo.IProcurementRepository
	newUOW      func() unitOfWork

	insertTimeout time.Duration
}

// option is a function that configures the SettlementService.
type option func(*SettlementService)

// MustNewSettlementService creates a new SettlementService.
func MustNewSettlementService(opts ...option) *SettlementService {
	s := &SettlementService{
		insertTimeout: defaultInsertTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.verifier == nil || s.allocator == nil || s.engine == nil {
		panic("settlementsvc: verifier, allocator and explosion engine are required")
	}
	if s.orders == nil || s.procurement == nil || s.newUOW == nil {
		panic("settlementsvc: repositories and unit-of-work factory are required")
	}

	return s
}

// WithPostgresClient sets the Postgres client and wires the default
// repositories and unit-of-work factory on top of it.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *SettlementService) {
		s.pgClient = pgClient
		s.orders = orderrepo.NewOrderRepository(pgClient.Pool())
		s.procurement = procurementrepo.NewProcurementRepository(pgClient.Pool())
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithRedisClient enables the idempotency fast-path and status cache.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRedisClient(client *goredis.Client) option {
	return func(s *SettlementService) {
		s.cache = redisdal.NewCache(client)
	}
}

// WithSettlementCache overrides the cache layer, used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSettlementCache(cache settlementCache) option {
	return func(s *SettlementService) {
		s.cache = cache
	}
}

// WithVerifier sets the payment signature verifier.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithVerifier(v *signature.Verifier) option {
	return func(s *SettlementService) {
		s.verifier = v
	}
}

// WithAllocator sets the sequential id allocator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAllocator(a *sequence.Allocator) option {
	return func(s *SettlementService) {
		s.allocator = a
	}
}

// WithExplosionEngine sets the recipe explosion engine.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithExplosionEngine(e *explosion.Engine) option {
	return func(s *SettlementService) {
		s.engine = e
	}
}

// WithRepositories overrides the pool-backed repositories, used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(
	orders iorderrepo.IOrderRepository,
	procurement iprocurementrepo.IProcurementRepository,
) option {
	return func(s *SettlementService) {
		s.orders = orders
		s.procurement = procurement
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work factory, used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *SettlementService) {
		s.newUOW = factory
	}
}

// settledEvent is the payload published for every settled order.
type settledEvent struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	OccurredAt  time.Time `json:"occurredAt"`
	OrderID     int64     `json:"orderId"`
	DisplayID   string    `json:"displayId"`
	PaymentRef  string    `json:"paymentRef"`
	TotalAmount string    `json:"totalAmount"`
}

// Settle verifies the payment claim, creates the order, explodes the cart
// into procurement rows and persists them.
//
// A forged signature aborts the call before any write. A retried call for an
// already-settled payment reference reuses the existing order instead of
// creating a second one.
func (s *SettlementService) Settle(
	ctx context.Context,
	req settlement.Request,
) (settlement.Result, error) {
	claim := req.Claim

	if !s.verifier.Verify(claim.OrderReferenceID, claim.PaymentReferenceID, claim.ClaimedSignature) {
		slog.Warn("rejected settlement claim with invalid signature",
			"order_ref", claim.OrderReferenceID,
			"payment_ref", claim.PaymentReferenceID,
		)

		return settlement.Result{}, settlement.ErrInvalidSignature
	}

	existing, err := s.findSettled(ctx, claim.PaymentReferenceID)
	if err != nil {
		return settlement.Result{}, err
	}
	if existing != nil {
		return s.resume(ctx, existing, req.CartItems)
	}

	o, err := s.createOrder(ctx, req)
	if err != nil {
		// Lost a race against a concurrent retry for the same payment:
		// fall through to the order that won.
		if errors.Is(err, order.ErrDuplicatePaymentRef) {
			winner, lookupErr := s.orders.GetByPaymentRef(ctx, claim.PaymentReferenceID)
			if lookupErr != nil {
				return settlement.Result{}, lookupErr
			}
			if winner != nil {
				return s.resume(ctx, winner, req.CartItems)
			}
		}

		return settlement.Result{}, err
	}

	drafts, gaps := s.explodeCart(ctx, o.ID, req.CartItems)

	if err := s.persistProcurement(ctx, drafts); err != nil {
		slog.Error("order settled but procurement batch failed",
			"order_id", o.ID,
			"display_id", o.DisplayID,
			"error", err,
		)

		return settlement.Result{}, fmt.Errorf(
			"order %d (%s): %w", o.ID, o.DisplayID, settlement.ErrProcurementPersist,
		)
	}

	if len(drafts) == 0 {
		slog.Warn("settled order has no procurement rows, needs reconciliation",
			"order_id", o.ID,
			"display_id", o.DisplayID,
		)
	}

	s.cacheSettlement(ctx, o)

	return settlement.Result{
		OrderID:   o.ID,
		DisplayID: o.DisplayID,
		Gaps:      gaps,
	}, nil
}

// findSettled checks whether this payment reference has already produced an
// order. A live cache hint resolves the order by primary key; the payment
// reference lookup remains the fallback and the truth.
func (s *SettlementService) findSettled(
	ctx context.Context,
	paymentRef string,
) (*order.Order, error) {
	if s.cache != nil {
		if id, ok := s.cache.GetSettledOrderID(ctx, paymentRef); ok {
			found, err := s.orders.Query(ctx, &order.QueryOrdersModel{Ids: []int64{id}})
			if err == nil && len(found) == 1 && found[0].PaymentRef == paymentRef {
				slog.Debug("idempotency fast-path hit",
					"payment_ref", paymentRef,
					"order_id", id,
				)

				return &found[0], nil
			}
			// Stale or mismatched hint: ignore it and ask the truth.
		}
	}

	return s.orders.GetByPaymentRef(ctx, paymentRef)
}

// resume finishes a settlement whose order already exists: if an earlier
// attempt died between the order insert and the procurement insert, the
// procurement batch is regenerated against the existing order id.
func (s *SettlementService) resume(
	ctx context.Context,
	o *order.Order,
	items []cartitem.CartItem,
) (settlement.Result, error) {
	count, err := s.procurement.CountByOrder(ctx, o.ID)
	if err != nil {
		return settlement.Result{}, err
	}

	result := settlement.Result{
		OrderID:   o.ID,
		DisplayID: o.DisplayID,
		Reused:    true,
	}

	if count > 0 {
		slog.Info("settlement retry matched existing order",
			"order_id", o.ID,
			"payment_ref", o.PaymentRef,
		)

		return result, nil
	}

	drafts, gaps := s.explodeCart(ctx, o.ID, items)
	if err := s.persistProcurement(ctx, drafts); err != nil {
		return settlement.Result{}, fmt.Errorf(
			"order %d (%s): %w", o.ID, o.DisplayID, settlement.ErrProcurementPersist,
		)
	}

	slog.Info("regenerated procurement batch for existing order",
		"order_id", o.ID,
		"rows", len(drafts),
	)

	result.Gaps = gaps

	return result, nil
}

// createOrder persists the order row and its settled-event outbox row in one
// transaction.
func (s *SettlementService) createOrder(
	ctx context.Context,
	req settlement.Request,
) (order.Order, error) {
	displayID, err := s.allocator.OrderDisplayID(ctx)
	if err != nil {
		return order.Order{}, err
	}

	invoiceNo, err := s.allocator.InvoiceNumber(ctx)
	if err != nil {
		// Invoice numbering is recoverable; the order must still settle.
		slog.Warn("invoice number allocation failed", "error", err)
		invoiceNo = ""
	}

	now := time.Now()
	o := order.Order{
		DisplayID:     displayID,
		InvoiceNo:     invoiceNo,
		CustomerRef:   normalizeCustomerRef(req.CustomerRef),
		PaymentRef:    req.Claim.PaymentReferenceID,
		Status:        order.StatusPaymentReceived,
		PaymentStatus: order.PaymentStatusPaid,
		TotalAmount:   req.TotalAmount,
		ShippingInfo:  req.ShippingInfo,
		Note: fmt.Sprintf(
			"settled against gateway payment %s (order ref %s)",
			req.Claim.PaymentReferenceID,
			req.Claim.OrderReferenceID,
		),
		CreatedAt: now,
		UpdatedAt: now,
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}

	msg, err := newSettledOutboxMessage(inserted)
	if err != nil {
		return order.Order{}, err
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit order: %w", err)
	}

	slog.Info("order settled",
		"order_id", inserted.ID,
		"display_id", inserted.DisplayID,
		"payment_ref", inserted.PaymentRef,
	)

	return inserted, nil
}

// explodeCart runs every cart line through the explosion engine, stamping
// drafts with the order id. Engine gaps are collected, never fatal.
func (s *SettlementService) explodeCart(
	ctx context.Context,
	orderID int64,
	items []cartitem.CartItem,
) ([]procurementitem.ProcurementItem, []settlement.Gap) {
	now := time.Now()

	var drafts []procurementitem.ProcurementItem
	var gaps []settlement.Gap

	for _, item := range items {
		rows, gap, err := s.engine.Explode(ctx, item)
		if err != nil {
			slog.Warn("cart item could not be exploded",
				"product_id", item.ID,
				"error", err,
			)
			gaps = append(gaps, settlement.Gap{
				ProductID:   item.ID,
				ProductName: item.Name,
				Reason:      "unexplodable cart item",
			})

			continue
		}
		if gap != nil {
			gaps = append(gaps, *gap)

			continue
		}

		for i := range rows {
			rows[i].OrderID = orderID
			// Explosion is deterministic, so line numbers are stable across
			// replays and the (order_id, line_no) constraint dedups them.
			rows[i].LineNo = len(drafts) + i + 1
			rows[i].CreatedAt = now
			rows[i].UpdatedAt = now
		}
		drafts = append(drafts, rows...)
	}

	return drafts, gaps
}

// persistProcurement writes the whole batch in one bulk insert, retried with
// backoff; the order is already durable, so exhausting retries surfaces a
// distinct partial-failure error instead of losing the order.
func (s *SettlementService) persistProcurement(
	ctx context.Context,
	drafts []procurementitem.ProcurementItem,
) error {
	if len(drafts) == 0 {
		return nil
	}

	backoff := retry.WithMaxRetries(
		procurementRetryAttempts,
		retry.NewFibonacci(500*time.Millisecond),
	)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		insertCtx, cancel := context.WithTimeout(ctx, s.insertTimeout)
		defer cancel()

		if _, err := s.procurement.BulkInsert(insertCtx, drafts); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

// cacheSettlement stores the idempotency shortcut and seeds the status
// cache. Best effort: a cache miss only costs a DB lookup later.
func (s *SettlementService) cacheSettlement(ctx context.Context, o order.Order) {
	if s.cache == nil {
		return
	}

	s.cache.StoreSettlement(ctx, o.PaymentRef, o.ID, o.Status.String())
}

// GetOrders retrieves orders for the admin listing.
func (s *SettlementService) GetOrders(
	ctx context.Context,
	filter order.QueryOrdersModel,
) ([]order.Order, error) {
	orders, err := s.orders.Query(ctx, &filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []order.Order{}
	}

	return orders, nil
}

// GetOrderStatus returns the fulfillment status of one order, served from
// the status cache when it is still warm and re-cached on a miss.
func (s *SettlementService) GetOrderStatus(
	ctx context.Context,
	orderID int64,
) (order.Status, error) {
	if s.cache != nil {
		if raw, ok := s.cache.GetOrderStatus(ctx, orderID); ok {
			if status, err := order.ParseStatus(raw); err == nil {
				return status, nil
			}
		}
	}

	found, err := s.orders.Query(ctx, &order.QueryOrdersModel{Ids: []int64{orderID}})
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("order %d: %w", orderID, order.ErrNotFound)
	}

	status := found[0].Status
	if s.cache != nil {
		s.cache.StoreOrderStatus(ctx, orderID, status.String())
	}

	return status, nil
}

// GetProcurementItems retrieves the procurement rows of one order.
func (s *SettlementService) GetProcurementItems(
	ctx context.Context,
	orderID int64,
) ([]procurementitem.ProcurementItem, error) {
	items, err := s.procurement.Query(ctx, &procurementitem.QueryProcurementItemsModel{
		OrderIds: []int64{orderID},
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []procurementitem.ProcurementItem{}
	}

	return items, nil
}

func normalizeCustomerRef(ref string) *string {
	if ref == "" || ref == "guest" {
		return nil
	}

	return &ref
}

func newSettledOutboxMessage(o order.Order) (outbox.Message, error) {
	now := time.Now()

	payload, err := json.Marshal(settledEvent{
		EventID:     uuid.NewString(),
		EventType:   eventOrderSettled,
		OccurredAt:  now.UTC(),
		OrderID:     o.ID,
		DisplayID:   o.DisplayID,
		PaymentRef:  o.PaymentRef,
		TotalAmount: o.TotalAmount.String(),
	})
	if err != nil {
		return outbox.Message{}, fmt.Errorf("marshal settled event: %w", err)
	}

	return outbox.Message{
		ExchangeName: viper.GetString("rabbitmq.events.exchange"),
		RoutingKey:   eventOrderSettled,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   defaultOutboxMaxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
