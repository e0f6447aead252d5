package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/posbridge/internal/clock"
	"github.com/smallbiznis/posbridge/internal/config"
	"github.com/smallbiznis/posbridge/internal/extract/domain"
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Clock  clock.Clock
	Rand   *rand.Rand `optional:"true"`
}

type Service struct {
	log   *zap.Logger
	cfg   config.Config
	clock clock.Clock
	rand  *rand.Rand
}

func New(p Params) domain.Service {
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(p.Clock.Now().UnixNano()))
	}
	return &Service{
		log:   p.Log.Named("extract.service"),
		cfg:   p.Config,
		clock: p.Clock,
		rand:  rng,
	}
}

// Fetch simulates one upstream API call and wraps the generated records in
// the shared response envelope. All currency figures are rounded to two
// fractional digits here, at the point of generation; nothing downstream
// rounds again.
func (s *Service) Fetch(ctx context.Context, api string, businessDate time.Time, storeID string) (domain.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return domain.Envelope{}, err
	}

	busDt := businessDate.Format("2006-01-02")

	var (
		data json.RawMessage
		err  error
	)
	switch api {
	case domain.APIFiscalInvoice:
		data, err = marshalRecords(s.fiscalInvoices(busDt, storeID))
	case domain.APIGuestChecks:
		data, err = s.guestChecks(businessDate, storeID)
	case domain.APIChargeBack:
		data, err = marshalRecords(s.chargeBacks(busDt, storeID))
	case domain.APITransactions:
		data, err = marshalRecords(s.transactions(storeID))
	case domain.APICashManagementDetails:
		data, err = marshalRecords(s.cashManagementDetails(busDt, storeID))
	default:
		return domain.Envelope{}, fmt.Errorf("%w: %s", domain.ErrUnknownAPI, api)
	}
	if err != nil {
		return domain.Envelope{}, err
	}

	envelope := domain.Envelope{
		Metadata: domain.Metadata{
			APIEndpoint:      api,
			TimestampRequest: s.clock.Now().UTC().Format(time.RFC3339),
			CorrelationID:    uuid.NewString(),
		},
		Payload: domain.Payload{
			BusDt:   busDt,
			StoreID: storeID,
			Data:    data,
		},
	}

	s.log.Debug("extracted document",
		zap.String("api", api),
		zap.String("store_id", storeID),
		zap.String("correlation_id", envelope.Metadata.CorrelationID),
	)
	return envelope, nil
}

func marshalRecords(records any) (json.RawMessage, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

// recordCount picks how many records an endpoint returns per call.
func (s *Service) recordCount() int {
	lo, hi := s.cfg.ChecksMin, s.cfg.ChecksMax
	if hi <= lo {
		return lo
	}
	return lo + s.rand.Intn(hi-lo+1)
}

// money draws a uniform amount in [lo, hi) rounded to 2 fractional digits.
func (s *Service) money(lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + s.rand.Float64()*(hi-lo)).Round(2)
}

func (s *Service) fiscalInvoices(busDt, storeID string) []domain.FiscalInvoice {
	count := s.recordCount()
	records := make([]domain.FiscalInvoice, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, domain.FiscalInvoice{
			InvoiceID:   uuid.NewString(),
			TotalAmount: s.money(50, 500),
			IssueDate:   busDt,
			StoreID:     storeID,
		})
	}
	return records
}

func (s *Service) chargeBacks(busDt, storeID string) []domain.ChargeBack {
	reasons := []string{"FRAUD", "NOT_DELIVERED", "PROCESSING_ERROR"}
	count := s.recordCount()
	records := make([]domain.ChargeBack, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, domain.ChargeBack{
			ChargeBackID:  uuid.NewString(),
			TransactionID: uuid.NewString(),
			Reason:        reasons[s.rand.Intn(len(reasons))],
			Amount:        s.money(20, 300),
			Date:          busDt,
			StoreID:       storeID,
		})
	}
	return records
}

func (s *Service) transactions(storeID string) []domain.Transaction {
	media := []string{"CREDIT", "DEBIT", "CASH", "PIX"}
	count := s.recordCount()
	records := make([]domain.Transaction, 0, count)
	for i := 0; i < count; i++ {
		at := s.clock.Now().UTC().Add(-time.Duration(1+s.rand.Intn(60)) * time.Minute)
		records = append(records, domain.Transaction{
			TransactionID: uuid.NewString(),
			Media:         media[s.rand.Intn(len(media))],
			Amount:        s.money(10, 1000),
			Timestamp:     at.Format(time.RFC3339),
			StoreID:       storeID,
		})
	}
	return records
}

func (s *Service) cashManagementDetails(busDt, storeID string) []domain.CashManagementDetail {
	count := s.recordCount()
	records := make([]domain.CashManagementDetail, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, domain.CashManagementDetail{
			CashManagementID: uuid.NewString(),
			OpeningBalance:   s.money(500, 1500),
			ClosingBalance:   s.money(2000, 5000),
			Date:             busDt,
			StoreID:          storeID,
		})
	}
	return records
}

// guestChecks generates fully nested checks and serializes them with the
// schema drift the real upstream exhibits: stores with an odd numeric id
// still report the tax array under the legacy "taxation" spelling.
func (s *Service) guestChecks(businessDate time.Time, storeID string) (json.RawMessage, error) {
	count := s.recordCount()
	raws := make([]json.RawMessage, 0, count)
	for i := 0; i < count; i++ {
		check := s.guestCheck(businessDate, storeID)
		raw, err := json.Marshal(check)
		if err != nil {
			return nil, fmt.Errorf("encode guest check: %w", err)
		}
		if legacyTaxSpelling(storeID) {
			raw, err = renameKey(raw, "taxes", "taxation")
			if err != nil {
				return nil, err
			}
		}
		raws = append(raws, raw)
	}
	return json.Marshal(raws)
}

func legacyTaxSpelling(storeID string) bool {
	id, err := strconv.Atoi(storeID)
	if err != nil {
		return false
	}
	return id%2 != 0
}

func renameKey(raw []byte, from, to string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if v, ok := fields[from]; ok {
		fields[to] = v
		delete(fields, from)
	}
	return json.Marshal(fields)
}

func (s *Service) guestCheck(businessDate time.Time, storeID string) normdomain.GuestCheck {
	busDt := businessDate.Format("2006-01-02")
	opened := time.Date(businessDate.Year(), businessDate.Month(), businessDate.Day(),
		10+s.rand.Intn(12), s.rand.Intn(60), s.rand.Intn(60), 0, time.UTC)
	closed := opened.Add(time.Duration(15+s.rand.Intn(90)) * time.Minute)

	checkID := 1_000_000 + s.rand.Int63n(9_000_000)
	empNum := 1 + s.rand.Int63n(50)
	rvcNum := int64(1 + s.rand.Intn(4))

	lineCount := 1 + s.rand.Intn(5)
	lines := make([]normdomain.DetailLine, 0, lineCount)
	subTtl := decimal.Zero
	dscTtl := decimal.Zero
	for i := 0; i < lineCount; i++ {
		line, lineTtl, lineDsc := s.detailLine(checkID, int64(i+1), busDt, opened, empNum, rvcNum)
		lines = append(lines, line)
		subTtl = subTtl.Add(lineTtl)
		dscTtl = dscTtl.Add(lineDsc)
	}

	taxColl := subTtl.Mul(decimal.NewFromFloat(0.10)).Round(2)
	chkTtl := subTtl.Add(taxColl).Sub(dscTtl)
	balDue := decimal.Zero

	check := normdomain.GuestCheck{
		GuestCheckID:   checkID,
		ChkNum:         int64p(100 + s.rand.Int63n(900)),
		OpnBusDt:       &busDt,
		OpnUTC:         timep(opened),
		OpnLcl:         timep(opened),
		ClsdBusDt:      &busDt,
		ClsdUTC:        timep(closed),
		ClsdLcl:        timep(closed),
		LastTransUTC:   timep(closed),
		LastTransLcl:   timep(closed),
		LastUpdatedUTC: timep(closed),
		LastUpdatedLcl: timep(closed),
		ClsdFlag:       boolp(true),
		GstCnt:         int64p(1 + s.rand.Int63n(6)),
		SubTtl:         &subTtl,
		ChkTtl:         &chkTtl,
		DscTtl:         &dscTtl,
		PayTtl:         &chkTtl,
		BalDueTtl:      &balDue,
		RvcNum:         &rvcNum,
		OtNum:          int64p(1),
		EmpNum:         &empNum,
		NumSrvcRd:      int64p(int64(lineCount)),
		NumChkPrntd:    int64p(1),
		Taxes: []normdomain.TaxEntry{{
			TaxNum:     int64p(1),
			TxblSlsTtl: &subTtl,
			TaxCollTtl: &taxColl,
			TaxRate:    decimalp(decimal.NewFromInt(10)),
			Type:       int64p(3),
		}},
		DetailLines: lines,
	}

	// Roughly half the checks are table service.
	if s.rand.Intn(2) == 0 {
		tbl := int64(1 + s.rand.Intn(30))
		name := fmt.Sprintf("T%02d", tbl)
		check.TblNum = &tbl
		check.TblName = &name
	}

	return check
}

// detailLine generates one line and reports its contribution to the check
// subtotal and discount total. Each line carries exactly one sub-entity.
func (s *Service) detailLine(checkID, lineNum int64, busDt string, at time.Time, empNum, rvcNum int64) (normdomain.DetailLine, decimal.Decimal, decimal.Decimal) {
	line := normdomain.DetailLine{
		GuestCheckLineItemID: checkID*100 + lineNum,
		RvcNum:               &rvcNum,
		DtlOtNum:             int64p(1),
		LineNum:              &lineNum,
		DtlID:                &lineNum,
		DetailUTC:            timep(at),
		DetailLcl:            timep(at),
		LastUpdateUTC:        timep(at),
		LastUpdateLcl:        timep(at),
		BusDt:                &busDt,
		WsNum:                int64p(int64(1 + s.rand.Intn(8))),
		ChkEmpID:             int64p(empNum * 10),
		ChkEmpNum:            &empNum,
		SvcRndNum:            int64p(1),
		SeatNum:              int64p(int64(1 + s.rand.Intn(4))),
	}

	switch s.rand.Intn(10) {
	case 6:
		value := s.money(2, 20)
		line.DspTtl = decimalp(value.Neg())
		line.DspQty = decimalp(decimal.NewFromInt(1))
		line.Discount = &normdomain.DiscountDetail{
			DiscountType:  strp("PERCENT"),
			DiscountValue: &value,
			IsPercent:     boolp(true),
		}
		return line, decimal.Zero, value
	case 7:
		value := s.money(1, 15)
		line.DspTtl = &value
		line.DspQty = decimalp(decimal.NewFromInt(1))
		line.ServiceCharge = &normdomain.ServiceChargeDetail{
			ChargeName:  strp("SERVICE_10PCT"),
			ChargeValue: &value,
		}
		return line, value, decimal.Zero
	case 8:
		amount := s.money(10, 200)
		media := []string{"CREDIT", "DEBIT", "CASH"}[s.rand.Intn(3)]
		line.DspTtl = &amount
		line.DspQty = decimalp(decimal.NewFromInt(1))
		line.TenderMedia = &normdomain.TenderMediaDetail{
			MediaType: &media,
			Amount:    &amount,
		}
		return line, decimal.Zero, decimal.Zero
	case 9:
		line.ErrorCode = &normdomain.ErrorCodeDetail{
			Code:    strp("E-VOID"),
			Message: strp("line voided at workstation"),
		}
		return line, decimal.Zero, decimal.Zero
	default:
		qty := decimal.NewFromInt(int64(1 + s.rand.Intn(3)))
		price := s.money(15, 120)
		total := price.Mul(qty).Round(2)
		line.DspQty = &qty
		line.DspTtl = &total
		line.AggQty = &qty
		line.AggTtl = &total
		line.MenuItem = &normdomain.MenuItemDetail{
			MiNum:       int64p(1000 + s.rand.Int63n(1000)),
			ModFlag:     boolp(false),
			InclTax:     decimalp(total.Mul(decimal.NewFromFloat(0.10)).Round(2)),
			ActiveTaxes: strp("1"),
			PrcLvl:      int64p(1),
		}
		return line, total, decimal.Zero
	}
}

func int64p(v int64) *int64                       { return &v }
func strp(v string) *string                       { return &v }
func boolp(v bool) *bool                          { return &v }
func decimalp(v decimal.Decimal) *decimal.Decimal { return &v }

func timep(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}
