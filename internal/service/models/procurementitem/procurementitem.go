package procurementitem

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the part category of a procurement row. Exploded pre-built
// slots map onto the fixed short codes below; discrete components keep the
// raw category the storefront catalog assigned them.
type Category string

const (
	CategoryCPU     Category = "cpu"
	CategoryGPU     Category = "gpu"
	CategoryMobo    Category = "mobo"
	CategoryRAM     Category = "ram"
	CategoryStorage Category = "storage"
	CategoryPSU     Category = "psu"
	CategoryCooler  Category = "cooler"
	CategoryCabinet Category = "cabinet"
)

// Status is the sourcing status of a procurement row.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSourced  Status = "sourced"
	StatusReceived Status = "received"
)

var ErrInvalidStatus = errors.New("invalid procurement status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSourced, StatusReceived:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ProcurementItem is one part that must be sourced to build an order. SKU is
// empty for parts exploded out of a pre-built system, which have no discrete
// catalog entry. DistributorName and CostPrice are filled by the procurement
// workflow after settlement.
//
// LineNo is the row's position within its order's batch. Cart explosion is
// deterministic, so a replayed batch produces the same line numbers and the
// (order_id, line_no) uniqueness constraint makes the replay a no-op.
type ProcurementItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"orderId"`
	LineNo          int             `json:"lineNo"`
	ProductName     string          `json:"productName"`
	SKU             string          `json:"sku,omitempty"`
	Category        Category        `json:"category"`
	Status          Status          `json:"status"`
	DistributorName string          `json:"distributorName,omitempty"`
	CostPrice       decimal.Decimal `json:"costPrice"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
