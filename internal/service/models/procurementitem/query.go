package procurementitem

// QueryProcurementItemsModel filters procurement listings.
type QueryProcurementItemsModel struct {
	OrderIds []int64
	Statuses []Status
	Limit    int
	Offset   int
}
