package order

// QueryOrdersModel filters order listings.
type QueryOrdersModel struct {
	Ids          []int64
	CustomerRefs []string
	PaymentRef   string
	Limit        int
	Offset       int
}
