package domain

// Batch is the result of normalizing one document: the fixed set of ten
// record collections. Collections may be empty but are never missing.
type Batch struct {
	Metadata       []ErpMetadataRow
	Employees      []EmployeeRow
	GuestChecks    []GuestCheckRow
	Taxes          []TaxRow
	DetailLines    []DetailLineRow
	MenuItems      []MenuItemRow
	Discounts      []DiscountRow
	ServiceCharges []ServiceChargeRow
	TenderMedia    []TenderMediaRow
	ErrorCodes     []ErrorCodeRow
}

// Table pairs a destination table name with its rows. Rows holds a typed
// slice so the loader can hand it to the ORM without copying.
type Table struct {
	Name  string
	Rows  any
	Count int
}

// Tables returns the collections in dependency order, parents before
// children. The loader must write them in exactly this order so foreign
// keys resolve within the transaction.
func (b *Batch) Tables() []Table {
	return []Table{
		{TableErpMetadata, b.Metadata, len(b.Metadata)},
		{TableEmployee, b.Employees, len(b.Employees)},
		{TableGuestChecks, b.GuestChecks, len(b.GuestChecks)},
		{TableTax, b.Taxes, len(b.Taxes)},
		{TableDetailLine, b.DetailLines, len(b.DetailLines)},
		{TableMenuItem, b.MenuItems, len(b.MenuItems)},
		{TableDiscount, b.Discounts, len(b.Discounts)},
		{TableServiceCharge, b.ServiceCharges, len(b.ServiceCharges)},
		{TableTenderMedia, b.TenderMedia, len(b.TenderMedia)},
		{TableErrorCode, b.ErrorCodes, len(b.ErrorCodes)},
	}
}
