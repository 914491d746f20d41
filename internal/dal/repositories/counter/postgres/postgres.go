package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rigbuilders/settlement-svc/internal/dal/postgres"
	"github.com/rigbuilders/settlement-svc/internal/service/models/counter"
)

// CounterRepository implements the named-sequence store on Postgres. The
// increment is a single upsert statement, so the read-increment-write cycle
// can never interleave between concurrent callers; Postgres row locking
// serializes writers on the counter row.
type CounterRepository struct {
	conn postgres.Querier
}

func NewCounterRepository(conn postgres.Querier) *CounterRepository {
	return &CounterRepository{
		conn: conn,
	}
}

// Increment bumps the named counter by one and returns the new value. A
// counter that does not exist yet starts at 1.
func (r *CounterRepository) Increment(ctx context.Context, name string) (int64, error) {
	sql := `
		INSERT INTO counters (name, current_value)
		VALUES ($1, 1)
		ON CONFLICT (name)
		DO UPDATE SET current_value = counters.current_value + 1
		RETURNING current_value
	`

	var value int64
	if err := r.conn.QueryRow(ctx, sql, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: increment %q: %v", counter.ErrStorageUnavailable, name, err)
	}

	return value, nil
}

// Current reads the counter without allocating.
func (r *CounterRepository) Current(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.conn.QueryRow(ctx, `SELECT current_value FROM counters WHERE name = $1`, name).
		Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("%w: read %q: %v", counter.ErrStorageUnavailable, name, err)
	}

	return value, nil
}
