package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbuilders/settlement-svc/internal/service/models/counter"
)

// memCounterRepo is an in-memory counter store with the same atomicity
// contract as the Postgres implementation.
type memCounterRepo struct {
	mu     sync.Mutex
	values map[string]int64
	down   bool
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{values: map[string]int64{}}
}

func (r *memCounterRepo) Increment(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return 0, counter.ErrStorageUnavailable
	}
	r.values[name]++
	return r.values[name], nil
}

func (r *memCounterRepo) Current(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return 0, counter.ErrStorageUnavailable
	}
	return r.values[name], nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
}

func TestNextStartsAtOne(t *testing.T) {
	a := NewAllocator(newMemCounterRepo())

	v, err := a.Next(context.Background(), "rb_pb")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestNextIsStrictlyIncreasing(t *testing.T) {
	a := NewAllocator(newMemCounterRepo())

	var prev int64
	for i := 0; i < 50; i++ {
		v, err := a.Next(context.Background(), "rb_pb")
		require.NoError(t, err)
		require.Equal(t, prev+1, v)
		prev = v
	}
}

func TestNextIndependentPerCounterName(t *testing.T) {
	a := NewAllocator(newMemCounterRepo())

	for i := int64(1); i <= 3; i++ {
		v, err := a.Next(context.Background(), "rb_order")
		require.NoError(t, err)
		require.Equal(t, i, v)
	}

	v, err := a.Next(context.Background(), "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestConcurrentAllocationsAreContiguous(t *testing.T) {
	const n = 100

	repo := newMemCounterRepo()
	a := NewAllocator(repo)

	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.Next(context.Background(), "rb_order")
			assert.NoError(t, err)
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, n)
	for v := range results {
		require.False(t, seen[v], "duplicate allocation %d", v)
		seen[v] = true
	}

	// Exactly n distinct members forming a contiguous range from 1.
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}
}

func TestOrderDisplayIDFormat(t *testing.T) {
	a := NewAllocator(newMemCounterRepo(), WithClock(fixedClock))

	id, err := a.OrderDisplayID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RB-2026-0001", id)

	id, err = a.OrderDisplayID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RB-2026-0002", id)
}

func TestOrderDisplayIDFallbackWhenStoreDown(t *testing.T) {
	repo := newMemCounterRepo()
	repo.down = true
	a := NewAllocator(repo, WithClock(fixedClock))

	id, err := a.OrderDisplayID(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^RB-2026-F\d{4}$`, id)
}

func TestInvoiceNumberFormat(t *testing.T) {
	a := NewAllocator(newMemCounterRepo(), WithClock(fixedClock))

	inv, err := a.InvoiceNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-RB-26-001", inv)
}

func TestInvoiceNumberPropagatesStorageError(t *testing.T) {
	repo := newMemCounterRepo()
	repo.down = true
	a := NewAllocator(repo, WithClock(fixedClock))

	_, err := a.InvoiceNumber(context.Background())
	require.ErrorIs(t, err, counter.ErrStorageUnavailable)
}
