package uow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/iorderrepo"
	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	orderrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/rigbuilders/settlement-svc/internal/dal/repositories/outbox/postgres"
)

// unitOfWork scopes the order row and its settled-event outbox row to one
// transaction: either both become visible or neither does.
type unitOfWork struct {
	client     *postgres.Client
	tx         pgx.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:     client,
		orderRepo:  orderrepo.NewOrderRepository(client.Pool()),
		outboxRepo: outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
