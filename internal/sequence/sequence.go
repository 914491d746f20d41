package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rigbuilders/settlement-svc/internal/dal/interfaces/icounterrepo"
	"github.com/rigbuilders/settlement-svc/internal/service/models/counter"
)

// Allocator issues human-readable identifiers backed by named monotonic
// counters. All formatting lives here; the repository only hands out raw
// integers.
type Allocator struct {
	counters icounterrepo.ICounterRepository
	now      func() time.Time
}

// option is a function that configures the Allocator.
type option func(*Allocator)

// NewAllocator creates a new Allocator.
func NewAllocator(counters icounterrepo.ICounterRepository, opts ...option) *Allocator {
	a := &Allocator{
		counters: counters,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithClock overrides the wall clock, used by tests for stable year digits.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(a *Allocator) {
		a.now = now
	}
}

// Next allocates the next value of the named counter.
func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	v, err := a.counters.Increment(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("allocate %q: %w", name, err)
	}

	return v, nil
}

// OrderDisplayID allocates an order display identifier of the form
// RB-<YYYY>-<NNNN>. When the counter store is unreachable it falls back to a
// clock-derived suffix marked with an F so fallback ids are distinguishable;
// those are not guaranteed unique and exist only to keep checkout alive.
func (a *Allocator) OrderDisplayID(ctx context.Context) (string, error) {
	year := a.now().Year()

	seq, err := a.Next(ctx, counter.NameOrder)
	if err != nil {
		if !errors.Is(err, counter.ErrStorageUnavailable) {
			return "", err
		}

		fallback := fmt.Sprintf("RB-%d-F%04d", year, a.now().UnixNano()%10000)
		slog.Warn("counter store unreachable, using fallback display id",
			"display_id", fallback,
			"error", err,
		)

		return fallback, nil
	}

	return fmt.Sprintf("RB-%d-%04d", year, seq), nil
}

// InvoiceNumber allocates an invoice identifier of the form
// INV-RB-<YY>-<NNN>.
func (a *Allocator) InvoiceNumber(ctx context.Context) (string, error) {
	seq, err := a.Next(ctx, counter.NameInvoice)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("INV-RB-%02d-%03d", a.now().Year()%100, seq), nil
}
