package icounterrepo

import (
	"context"
)

// ICounterRepository defines the atomic sequence primitive. Increment bumps
// the named counter by one and returns the new value in a single atomic
// operation; two concurrent callers can never observe the same value.
type ICounterRepository interface {
	Increment(ctx context.Context, name string) (int64, error)

	// Current reads the counter without allocating. Returns 0 for a counter
	// that has never been incremented.
	Current(ctx context.Context, name string) (int64, error)
}
