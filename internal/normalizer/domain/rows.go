package domain

import "github.com/shopspring/decimal"

// Destination table names. These are part of the loader contract and match
// the warehouse schema exactly, including casing.
const (
	TableErpMetadata   = "ErpMetadata"
	TableEmployee      = "employee"
	TableGuestChecks   = "guestChecks"
	TableTax           = "tax"
	TableDetailLine    = "detailLine"
	TableMenuItem      = "menuItem"
	TableDiscount      = "discount"
	TableServiceCharge = "serviceCharge"
	TableTenderMedia   = "tenderMedia"
	TableErrorCode     = "errorCode"
)

// ErpMetadataRow records one ingestion batch's envelope info.
type ErpMetadataRow struct {
	CurUTC string `gorm:"column:curUTC"`
	LocRef string `gorm:"column:locRef"`
}

func (ErpMetadataRow) TableName() string { return TableErpMetadata }

// EmployeeRow is one distinct employee reference seen in a batch.
type EmployeeRow struct {
	EmpNum int64 `gorm:"column:empNum"`
}

func (EmployeeRow) TableName() string { return TableEmployee }

// GuestCheckRow is the flattened form of one check. The column set is
// fixed: fields missing from the source document stay nil and load as
// NULL, never as a narrower row.
type GuestCheckRow struct {
	GuestCheckID   int64            `gorm:"column:guestCheckId;primaryKey"`
	ChkNum         *int64           `gorm:"column:chkNum"`
	OpnBusDt       *string          `gorm:"column:opnBusDt"`
	OpnUTC         *string          `gorm:"column:opnUTC"`
	OpnLcl         *string          `gorm:"column:opnLcl"`
	ClsdBusDt      *string          `gorm:"column:clsdBusDt"`
	ClsdUTC        *string          `gorm:"column:clsdUTC"`
	ClsdLcl        *string          `gorm:"column:clsdLcl"`
	LastTransUTC   *string          `gorm:"column:lastTransUTC"`
	LastTransLcl   *string          `gorm:"column:lastTransLcl"`
	LastUpdatedUTC *string          `gorm:"column:lastUpdatedUTC"`
	LastUpdatedLcl *string          `gorm:"column:lastUpdatedLcl"`
	ClsdFlag       *bool            `gorm:"column:clsdFlag"`
	GstCnt         *int64           `gorm:"column:gstCnt"`
	SubTtl         *decimal.Decimal `gorm:"column:subTtl"`
	NonTxblSlsTtl  *decimal.Decimal `gorm:"column:nonTxblSlsTtl"`
	ChkTtl         *decimal.Decimal `gorm:"column:chkTtl"`
	DscTtl         *decimal.Decimal `gorm:"column:dscTtl"`
	PayTtl         *decimal.Decimal `gorm:"column:payTtl"`
	BalDueTtl      *decimal.Decimal `gorm:"column:balDueTtl"`
	RvcNum         *int64           `gorm:"column:rvcNum"`
	OtNum          *int64           `gorm:"column:otNum"`
	OcNum          *int64           `gorm:"column:ocNum"`
	TblNum         *int64           `gorm:"column:tblNum"`
	TblName        *string          `gorm:"column:tblName"`
	EmpNum         *int64           `gorm:"column:empNum"`
	NumSrvcRd      *int64           `gorm:"column:numSrvcRd"`
	NumChkPrntd    *int64           `gorm:"column:numChkPrntd"`
	CurUTC         string           `gorm:"column:curUTC"`
}

func (GuestCheckRow) TableName() string { return TableGuestChecks }

// TaxRow is one tax line, keyed back to its check.
type TaxRow struct {
	GuestCheckID int64            `gorm:"column:guestCheckId"`
	TaxNum       *int64           `gorm:"column:taxNum"`
	TxblSlsTtl   *decimal.Decimal `gorm:"column:txblSlsTtl"`
	TaxCollTtl   *decimal.Decimal `gorm:"column:taxCollTtl"`
	TaxRate      *decimal.Decimal `gorm:"column:taxRate"`
	Type         *int64           `gorm:"column:type"`
}

func (TaxRow) TableName() string { return TableTax }

// DetailLineRow is one flattened line item, keyed back to its check and
// acting as the parent of the five sub-entity tables.
type DetailLineRow struct {
	GuestCheckLineItemID int64            `gorm:"column:guestCheckLineItemId;primaryKey"`
	GuestCheckID         int64            `gorm:"column:guestCheckId"`
	RvcNum               *int64           `gorm:"column:rvcNum"`
	DtlOtNum             *int64           `gorm:"column:dtlOtNum"`
	DtlOcNum             *int64           `gorm:"column:dtlOcNum"`
	LineNum              *int64           `gorm:"column:lineNum"`
	DtlID                *int64           `gorm:"column:dtlId"`
	DetailUTC            *string          `gorm:"column:detailUTC"`
	DetailLcl            *string          `gorm:"column:detailLcl"`
	LastUpdateUTC        *string          `gorm:"column:lastUpdateUTC"`
	LastUpdateLcl        *string          `gorm:"column:lastUpdateLcl"`
	BusDt                *string          `gorm:"column:busDt"`
	WsNum                *int64           `gorm:"column:wsNum"`
	DspTtl               *decimal.Decimal `gorm:"column:dspTtl"`
	DspQty               *decimal.Decimal `gorm:"column:dspQty"`
	AggTtl               *decimal.Decimal `gorm:"column:aggTtl"`
	AggQty               *decimal.Decimal `gorm:"column:aggQty"`
	ChkEmpID             *int64           `gorm:"column:chkEmpId"`
	ChkEmpNum            *int64           `gorm:"column:chkEmpNum"`
	SvcRndNum            *int64           `gorm:"column:svcRndNum"`
	SeatNum              *int64           `gorm:"column:seatNum"`
}

func (DetailLineRow) TableName() string { return TableDetailLine }

// MenuItemRow is the menu-item variant of a detail line, prefix stripped.
type MenuItemRow struct {
	GuestCheckLineItemID int64            `gorm:"column:guestCheckLineItemId"`
	MiNum                *int64           `gorm:"column:miNum"`
	ModFlag              *bool            `gorm:"column:modFlag"`
	InclTax              *decimal.Decimal `gorm:"column:inclTax"`
	ActiveTaxes          *string          `gorm:"column:activeTaxes"`
	PrcLvl               *int64           `gorm:"column:prcLvl"`
}

func (MenuItemRow) TableName() string { return TableMenuItem }

type DiscountRow struct {
	GuestCheckLineItemID int64            `gorm:"column:guestCheckLineItemId"`
	DiscountType         *string          `gorm:"column:discountType"`
	DiscountValue        *decimal.Decimal `gorm:"column:discountValue"`
	IsPercent            *bool            `gorm:"column:isPercent"`
}

func (DiscountRow) TableName() string { return TableDiscount }

type ServiceChargeRow struct {
	GuestCheckLineItemID int64            `gorm:"column:guestCheckLineItemId"`
	ChargeName           *string          `gorm:"column:chargeName"`
	ChargeValue          *decimal.Decimal `gorm:"column:chargeValue"`
}

func (ServiceChargeRow) TableName() string { return TableServiceCharge }

type TenderMediaRow struct {
	GuestCheckLineItemID int64            `gorm:"column:guestCheckLineItemId"`
	MediaType            *string          `gorm:"column:mediaType"`
	Amount               *decimal.Decimal `gorm:"column:amount"`
}

func (TenderMediaRow) TableName() string { return TableTenderMedia }

type ErrorCodeRow struct {
	GuestCheckLineItemID int64   `gorm:"column:guestCheckLineItemId"`
	Code                 *string `gorm:"column:code"`
	Message              *string `gorm:"column:message"`
}

func (ErrorCodeRow) TableName() string { return TableErrorCode }
