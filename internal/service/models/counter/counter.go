package counter

import "errors"

// Counter names used by this service.
const (
	NameOrder   = "rb_order"
	NameInvoice = "invoice"
)

// ErrStorageUnavailable means the counter store could not be reached and no
// sequence value was allocated.
var ErrStorageUnavailable = errors.New("counter storage unavailable")

// Counter is a named monotonic integer sequence. CurrentValue is the last
// value handed out; allocation bumps it by exactly one.
type Counter struct {
	Name         string `json:"name"`
	CurrentValue int64  `json:"currentValue"`
}
