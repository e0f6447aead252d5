package service

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/posbridge/internal/normalizer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() domain.Service {
	return New(Params{Log: zap.NewNop()})
}

func int64p(v int64) *int64 { return &v }
func strp(v string) *string { return &v }
func boolp(v bool) *bool    { return &v }
func decp(v string) *decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return &d
}

func fixtureDocument() domain.Document {
	return domain.Document{
		CurUTC: "2024-03-07T10:00:00Z",
		LocRef: "101",
		GuestChecks: []domain.GuestCheck{
			{
				GuestCheckID: 1001,
				ChkNum:       int64p(55),
				OpnBusDt:     strp("2024-03-07"),
				SubTtl:       decp("120.50"),
				ChkTtl:       decp("132.55"),
				EmpNum:       int64p(5),
				Taxes: []domain.TaxEntry{
					{TaxNum: int64p(1), TxblSlsTtl: decp("120.50"), TaxCollTtl: decp("12.05"), TaxRate: decp("10"), Type: int64p(3)},
				},
				DetailLines: []domain.DetailLine{
					{
						GuestCheckLineItemID: 9001,
						LineNum:              int64p(1),
						DspTtl:               decp("60.25"),
						DspQty:               decp("1"),
						MenuItem: &domain.MenuItemDetail{
							MiNum:   int64p(1500),
							ModFlag: boolp(false),
							InclTax: decp("6.02"),
							PrcLvl:  int64p(1),
						},
					},
					{
						GuestCheckLineItemID: 9002,
						LineNum:              int64p(2),
						Discount: &domain.DiscountDetail{
							DiscountType:  strp("PERCENT"),
							DiscountValue: decp("10"),
							IsPercent:     boolp(true),
						},
					},
				},
			},
			{
				GuestCheckID: 1002,
				EmpNum:       int64p(5),
				DetailLines: []domain.DetailLine{
					{
						GuestCheckLineItemID: 9003,
						TenderMedia: &domain.TenderMediaDetail{
							MediaType: strp("CREDIT"),
							Amount:    decp("45.00"),
						},
					},
				},
			},
			{
				GuestCheckID: 1003,
				EmpNum:       int64p(7),
			},
		},
	}
}

func TestNormalizeGuestCheckRows(t *testing.T) {
	svc := newService()

	doc := fixtureDocument()
	batch, err := svc.Normalize(doc)
	require.NoError(t, err)

	assert.Len(t, batch.GuestChecks, 3)

	seen := make(map[int64]bool)
	for _, row := range batch.GuestChecks {
		assert.False(t, seen[row.GuestCheckID], "guestCheckId %d duplicated", row.GuestCheckID)
		seen[row.GuestCheckID] = true
		assert.Equal(t, "2024-03-07T10:00:00Z", row.CurUTC, "curUTC is batch scoped and repeated on every row")
	}

	assert.Len(t, batch.Metadata, 1)
	assert.Equal(t, "101", batch.Metadata[0].LocRef)
}

func TestNormalizeMissingFieldsStayNull(t *testing.T) {
	svc := newService()

	// No check in the batch populates tblName: the column is still part of
	// every row, valued NULL, instead of the row shape narrowing.
	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	for _, row := range batch.GuestChecks {
		assert.Nil(t, row.TblName)
		assert.Nil(t, row.BalDueTtl)
	}
}

func TestNormalizeTaxFanOut(t *testing.T) {
	svc := newService()

	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	require.Len(t, batch.Taxes, 1)
	assert.Equal(t, int64(1001), batch.Taxes[0].GuestCheckID)
	assert.True(t, batch.Taxes[0].TaxCollTtl.Equal(decimal.RequireFromString("12.05")))

	// Checks without tax entries contribute no tax rows at all.
	for _, row := range batch.Taxes {
		assert.NotEqual(t, int64(1002), row.GuestCheckID)
		assert.NotEqual(t, int64(1003), row.GuestCheckID)
	}
}

func TestNormalizeDetailLineParentKey(t *testing.T) {
	svc := newService()

	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	require.Len(t, batch.DetailLines, 3)
	byLine := make(map[int64]int64)
	for _, row := range batch.DetailLines {
		byLine[row.GuestCheckLineItemID] = row.GuestCheckID
	}
	assert.Equal(t, int64(1001), byLine[9001])
	assert.Equal(t, int64(1001), byLine[9002])
	assert.Equal(t, int64(1002), byLine[9003])
}

func TestNormalizeSubEntityExtraction(t *testing.T) {
	svc := newService()

	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	require.Len(t, batch.Discounts, 1)
	discount := batch.Discounts[0]
	assert.Equal(t, int64(9002), discount.GuestCheckLineItemID)
	assert.Equal(t, "PERCENT", *discount.DiscountType)
	assert.True(t, discount.DiscountValue.Equal(decimal.NewFromInt(10)))
	assert.True(t, *discount.IsPercent)

	require.Len(t, batch.MenuItems, 1)
	assert.Equal(t, int64(9001), batch.MenuItems[0].GuestCheckLineItemID)

	require.Len(t, batch.TenderMedia, 1)
	assert.Equal(t, int64(9003), batch.TenderMedia[0].GuestCheckLineItemID)

	// Lines carrying no matching sub-object produce no row, not a row of
	// NULLs.
	assert.Empty(t, batch.ServiceCharges)
	assert.Empty(t, batch.ErrorCodes)
}

func TestNormalizeSubEntitySuppressedWithoutLeadField(t *testing.T) {
	svc := newService()

	doc := domain.Document{
		CurUTC: "2024-03-07T10:00:00Z",
		LocRef: "101",
		GuestChecks: []domain.GuestCheck{{
			GuestCheckID: 1,
			DetailLines: []domain.DetailLine{{
				GuestCheckLineItemID: 10,
				Discount:             &domain.DiscountDetail{DiscountValue: decp("5")},
			}},
		}},
	}

	batch, err := svc.Normalize(doc)
	require.NoError(t, err)
	assert.Empty(t, batch.Discounts)
}

func TestNormalizeEmployeeDeduplication(t *testing.T) {
	svc := newService()

	// empNum values 5, 5, 7 collapse to the set {5, 7}.
	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	require.Len(t, batch.Employees, 2)
	assert.Equal(t, int64(5), batch.Employees[0].EmpNum)
	assert.Equal(t, int64(7), batch.Employees[1].EmpNum)
}

func TestNormalizeEmptyBatch(t *testing.T) {
	svc := newService()

	_, err := svc.Normalize(domain.Document{CurUTC: "2024-03-07T10:00:00Z", LocRef: "101"})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = svc.Normalize(domain.Document{
		CurUTC:      "2024-03-07T10:00:00Z",
		LocRef:      "101",
		GuestChecks: []domain.GuestCheck{},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestNormalizeIdempotent(t *testing.T) {
	svc := newService()

	doc := fixtureDocument()
	first, err := svc.Normalize(doc)
	require.NoError(t, err)
	second, err := svc.Normalize(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeTablesDependencyOrder(t *testing.T) {
	svc := newService()

	batch, err := svc.Normalize(fixtureDocument())
	require.NoError(t, err)

	names := make([]string, 0, 10)
	for _, table := range batch.Tables() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{
		domain.TableErpMetadata,
		domain.TableEmployee,
		domain.TableGuestChecks,
		domain.TableTax,
		domain.TableDetailLine,
		domain.TableMenuItem,
		domain.TableDiscount,
		domain.TableServiceCharge,
		domain.TableTenderMedia,
		domain.TableErrorCode,
	}, names)
}

func TestGuestCheckTaxAliasResolution(t *testing.T) {
	var drifted domain.GuestCheck
	err := json.Unmarshal([]byte(`{
		"guestCheckId": 42,
		"taxation": [{"taxNum": 9, "taxRate": 10}]
	}`), &drifted)
	require.NoError(t, err)
	require.Len(t, drifted.Taxes, 1)
	assert.Equal(t, int64(9), *drifted.Taxes[0].TaxNum)

	// Canonical spelling wins when a document carries both.
	var both domain.GuestCheck
	err = json.Unmarshal([]byte(`{
		"guestCheckId": 43,
		"taxes": [{"taxNum": 1}],
		"taxation": [{"taxNum": 2}]
	}`), &both)
	require.NoError(t, err)
	require.Len(t, both.Taxes, 1)
	assert.Equal(t, int64(1), *both.Taxes[0].TaxNum)
}

func TestNormalizePassesMoneyThroughUnchanged(t *testing.T) {
	svc := newService()

	doc := domain.Document{
		CurUTC: "2024-03-07T10:00:00Z",
		LocRef: "101",
		GuestChecks: []domain.GuestCheck{{
			GuestCheckID: 1,
			SubTtl:       decp("10.999"),
		}},
	}

	batch, err := svc.Normalize(doc)
	require.NoError(t, err)

	// The engine never re-rounds: a value with surplus precision survives
	// exactly as reported.
	assert.Equal(t, "10.999", batch.GuestChecks[0].SubTtl.String())
}
