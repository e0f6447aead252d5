package service

import (
	"github.com/smallbiznis/posbridge/internal/normalizer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		log: p.Log.Named("normalizer.service"),
	}
}

// Normalize flattens one document into the ten fixed collections. It never
// fails on data-shape irregularities: unknown fields were already dropped
// at decode time and missing fields stay NULL. The only signalled
// condition is an empty batch.
func (s *Service) Normalize(doc domain.Document) (*domain.Batch, error) {
	if len(doc.GuestChecks) == 0 {
		s.log.Warn("document carries no guest checks, skipping batch",
			zap.String("locRef", doc.LocRef),
			zap.String("curUTC", doc.CurUTC),
		)
		return nil, domain.ErrEmptyBatch
	}

	batch := &domain.Batch{
		Metadata: []domain.ErpMetadataRow{{CurUTC: doc.CurUTC, LocRef: doc.LocRef}},
	}

	// Employee de-duplication is batch local: first occurrence wins so the
	// output stays deterministic for identical input.
	seenEmployees := make(map[int64]struct{})

	for _, chk := range doc.GuestChecks {
		batch.GuestChecks = append(batch.GuestChecks, guestCheckRow(doc, chk))

		if chk.EmpNum != nil {
			if _, ok := seenEmployees[*chk.EmpNum]; !ok {
				seenEmployees[*chk.EmpNum] = struct{}{}
				batch.Employees = append(batch.Employees, domain.EmployeeRow{EmpNum: *chk.EmpNum})
			}
		}

		for _, tax := range chk.Taxes {
			batch.Taxes = append(batch.Taxes, taxRow(chk.GuestCheckID, tax))
		}

		for _, line := range chk.DetailLines {
			batch.DetailLines = append(batch.DetailLines, detailLineRow(chk.GuestCheckID, line))
			appendSubEntities(batch, line)
		}
	}

	return batch, nil
}

// guestCheckRow flattens one check. curUTC is batch scoped and repeated
// onto every row. Money values pass through untouched; rounding happened
// at the source.
func guestCheckRow(doc domain.Document, chk domain.GuestCheck) domain.GuestCheckRow {
	return domain.GuestCheckRow{
		GuestCheckID:   chk.GuestCheckID,
		ChkNum:         chk.ChkNum,
		OpnBusDt:       chk.OpnBusDt,
		OpnUTC:         chk.OpnUTC,
		OpnLcl:         chk.OpnLcl,
		ClsdBusDt:      chk.ClsdBusDt,
		ClsdUTC:        chk.ClsdUTC,
		ClsdLcl:        chk.ClsdLcl,
		LastTransUTC:   chk.LastTransUTC,
		LastTransLcl:   chk.LastTransLcl,
		LastUpdatedUTC: chk.LastUpdatedUTC,
		LastUpdatedLcl: chk.LastUpdatedLcl,
		ClsdFlag:       chk.ClsdFlag,
		GstCnt:         chk.GstCnt,
		SubTtl:         chk.SubTtl,
		NonTxblSlsTtl:  chk.NonTxblSlsTtl,
		ChkTtl:         chk.ChkTtl,
		DscTtl:         chk.DscTtl,
		PayTtl:         chk.PayTtl,
		BalDueTtl:      chk.BalDueTtl,
		RvcNum:         chk.RvcNum,
		OtNum:          chk.OtNum,
		OcNum:          chk.OcNum,
		TblNum:         chk.TblNum,
		TblName:        chk.TblName,
		EmpNum:         chk.EmpNum,
		NumSrvcRd:      chk.NumSrvcRd,
		NumChkPrntd:    chk.NumChkPrntd,
		CurUTC:         doc.CurUTC,
	}
}

func taxRow(guestCheckID int64, tax domain.TaxEntry) domain.TaxRow {
	return domain.TaxRow{
		GuestCheckID: guestCheckID,
		TaxNum:       tax.TaxNum,
		TxblSlsTtl:   tax.TxblSlsTtl,
		TaxCollTtl:   tax.TaxCollTtl,
		TaxRate:      tax.TaxRate,
		Type:         tax.Type,
	}
}

func detailLineRow(guestCheckID int64, line domain.DetailLine) domain.DetailLineRow {
	return domain.DetailLineRow{
		GuestCheckLineItemID: line.GuestCheckLineItemID,
		GuestCheckID:         guestCheckID,
		RvcNum:               line.RvcNum,
		DtlOtNum:             line.DtlOtNum,
		DtlOcNum:             line.DtlOcNum,
		LineNum:              line.LineNum,
		DtlID:                line.DtlID,
		DetailUTC:            line.DetailUTC,
		DetailLcl:            line.DetailLcl,
		LastUpdateUTC:        line.LastUpdateUTC,
		LastUpdateLcl:        line.LastUpdateLcl,
		BusDt:                line.BusDt,
		WsNum:                line.WsNum,
		DspTtl:               line.DspTtl,
		DspQty:               line.DspQty,
		AggTtl:               line.AggTtl,
		AggQty:               line.AggQty,
		ChkEmpID:             line.ChkEmpID,
		ChkEmpNum:            line.ChkEmpNum,
		SvcRndNum:            line.SvcRndNum,
		SeatNum:              line.SeatNum,
	}
}

// appendSubEntities extracts the at-most-one nested sub-object a detail
// line carries. A row is emitted only when the object is present and its
// leading field is populated; an absent object contributes no row, never a
// row of NULLs. The join key is preserved on every extracted row.
func appendSubEntities(batch *domain.Batch, line domain.DetailLine) {
	if mi := line.MenuItem; mi != nil && mi.MiNum != nil {
		batch.MenuItems = append(batch.MenuItems, domain.MenuItemRow{
			GuestCheckLineItemID: line.GuestCheckLineItemID,
			MiNum:                mi.MiNum,
			ModFlag:              mi.ModFlag,
			InclTax:              mi.InclTax,
			ActiveTaxes:          mi.ActiveTaxes,
			PrcLvl:               mi.PrcLvl,
		})
	}
	if d := line.Discount; d != nil && d.DiscountType != nil {
		batch.Discounts = append(batch.Discounts, domain.DiscountRow{
			GuestCheckLineItemID: line.GuestCheckLineItemID,
			DiscountType:         d.DiscountType,
			DiscountValue:        d.DiscountValue,
			IsPercent:            d.IsPercent,
		})
	}
	if sc := line.ServiceCharge; sc != nil && sc.ChargeName != nil {
		batch.ServiceCharges = append(batch.ServiceCharges, domain.ServiceChargeRow{
			GuestCheckLineItemID: line.GuestCheckLineItemID,
			ChargeName:           sc.ChargeName,
			ChargeValue:          sc.ChargeValue,
		})
	}
	if tm := line.TenderMedia; tm != nil && tm.MediaType != nil {
		batch.TenderMedia = append(batch.TenderMedia, domain.TenderMediaRow{
			GuestCheckLineItemID: line.GuestCheckLineItemID,
			MediaType:            tm.MediaType,
			Amount:               tm.Amount,
		})
	}
	if ec := line.ErrorCode; ec != nil && ec.Code != nil {
		batch.ErrorCodes = append(batch.ErrorCodes, domain.ErrorCodeRow{
			GuestCheckLineItemID: line.GuestCheckLineItemID,
			Code:                 ec.Code,
			Message:              ec.Message,
		})
	}
}
