package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Document is one ingested guest-check batch: the envelope fields that are
// batch scoped (curUTC, locRef) plus every check reported for the location.
type Document struct {
	CurUTC      string       `json:"curUTC"`
	LocRef      string       `json:"locRef"`
	GuestChecks []GuestCheck `json:"guestChecks"`
}

// GuestCheck is one point-of-sale transaction as the upstream ERP reports
// it. Every field outside the identifier may be absent; absent fields stay
// nil and surface as NULL in the relational output.
type GuestCheck struct {
	GuestCheckID   int64            `json:"guestCheckId"`
	ChkNum         *int64           `json:"chkNum"`
	OpnBusDt       *string          `json:"opnBusDt"`
	OpnUTC         *string          `json:"opnUTC"`
	OpnLcl         *string          `json:"opnLcl"`
	ClsdBusDt      *string          `json:"clsdBusDt"`
	ClsdUTC        *string          `json:"clsdUTC"`
	ClsdLcl        *string          `json:"clsdLcl"`
	LastTransUTC   *string          `json:"lastTransUTC"`
	LastTransLcl   *string          `json:"lastTransLcl"`
	LastUpdatedUTC *string          `json:"lastUpdatedUTC"`
	LastUpdatedLcl *string          `json:"lastUpdatedLcl"`
	ClsdFlag       *bool            `json:"clsdFlag"`
	GstCnt         *int64           `json:"gstCnt"`
	SubTtl         *decimal.Decimal `json:"subTtl"`
	NonTxblSlsTtl  *decimal.Decimal `json:"nonTxblSlsTtl"`
	ChkTtl         *decimal.Decimal `json:"chkTtl"`
	DscTtl         *decimal.Decimal `json:"dscTtl"`
	PayTtl         *decimal.Decimal `json:"payTtl"`
	BalDueTtl      *decimal.Decimal `json:"balDueTtl"`
	RvcNum         *int64           `json:"rvcNum"`
	OtNum          *int64           `json:"otNum"`
	OcNum          *int64           `json:"ocNum"`
	TblNum         *int64           `json:"tblNum"`
	TblName        *string          `json:"tblName"`
	EmpNum         *int64           `json:"empNum"`
	NumSrvcRd      *int64           `json:"numSrvcRd"`
	NumChkPrntd    *int64           `json:"numChkPrntd"`
	Taxes          []TaxEntry       `json:"taxes"`
	DetailLines    []DetailLine     `json:"detailLines"`
}

// UnmarshalJSON resolves the tax-array field drift between extract
// versions: older documents spell the array "taxation". Aliases are checked
// in priority order and the canonical "taxes" key wins when both appear.
func (g *GuestCheck) UnmarshalJSON(data []byte) error {
	type plain GuestCheck
	aux := struct {
		*plain
		Taxation []TaxEntry `json:"taxation"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if g.Taxes == nil {
		g.Taxes = aux.Taxation
	}
	return nil
}

// TaxEntry is one tax line on a check.
type TaxEntry struct {
	TaxNum     *int64           `json:"taxNum"`
	TxblSlsTtl *decimal.Decimal `json:"txblSlsTtl"`
	TaxCollTtl *decimal.Decimal `json:"taxCollTtl"`
	TaxRate    *decimal.Decimal `json:"taxRate"`
	Type       *int64           `json:"type"`
}

// DetailLine is one line item on a check. At most one of the five nested
// sub-objects is populated, identifying what kind of event the line is.
type DetailLine struct {
	GuestCheckLineItemID int64            `json:"guestCheckLineItemId"`
	RvcNum               *int64           `json:"rvcNum"`
	DtlOtNum             *int64           `json:"dtlOtNum"`
	DtlOcNum             *int64           `json:"dtlOcNum"`
	LineNum              *int64           `json:"lineNum"`
	DtlID                *int64           `json:"dtlId"`
	DetailUTC            *string          `json:"detailUTC"`
	DetailLcl            *string          `json:"detailLcl"`
	LastUpdateUTC        *string          `json:"lastUpdateUTC"`
	LastUpdateLcl        *string          `json:"lastUpdateLcl"`
	BusDt                *string          `json:"busDt"`
	WsNum                *int64           `json:"wsNum"`
	DspTtl               *decimal.Decimal `json:"dspTtl"`
	DspQty               *decimal.Decimal `json:"dspQty"`
	AggTtl               *decimal.Decimal `json:"aggTtl"`
	AggQty               *decimal.Decimal `json:"aggQty"`
	ChkEmpID             *int64           `json:"chkEmpId"`
	ChkEmpNum            *int64           `json:"chkEmpNum"`
	SvcRndNum            *int64           `json:"svcRndNum"`
	SeatNum              *int64           `json:"seatNum"`

	MenuItem      *MenuItemDetail      `json:"menuItem,omitempty"`
	Discount      *DiscountDetail      `json:"discount,omitempty"`
	ServiceCharge *ServiceChargeDetail `json:"serviceCharge,omitempty"`
	TenderMedia   *TenderMediaDetail   `json:"tenderMedia,omitempty"`
	ErrorCode     *ErrorCodeDetail     `json:"errorCode,omitempty"`
}

type MenuItemDetail struct {
	MiNum       *int64           `json:"miNum"`
	ModFlag     *bool            `json:"modFlag"`
	InclTax     *decimal.Decimal `json:"inclTax"`
	ActiveTaxes *string          `json:"activeTaxes"`
	PrcLvl      *int64           `json:"prcLvl"`
}

type DiscountDetail struct {
	DiscountType  *string          `json:"discountType"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	IsPercent     *bool            `json:"isPercent"`
}

type ServiceChargeDetail struct {
	ChargeName  *string          `json:"chargeName"`
	ChargeValue *decimal.Decimal `json:"chargeValue"`
}

type TenderMediaDetail struct {
	MediaType *string          `json:"mediaType"`
	Amount    *decimal.Decimal `json:"amount"`
}

type ErrorCodeDetail struct {
	Code    *string `json:"code"`
	Message *string `json:"message"`
}
