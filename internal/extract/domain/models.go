package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
)

// The upstream ERP exposes five extraction endpoints. Every run pulls all
// of them for every configured store.
const (
	APIFiscalInvoice         = "getFiscalInvoice"
	APIGuestChecks           = "getGuestChecks"
	APIChargeBack            = "getChargeBack"
	APITransactions          = "getTransactions"
	APICashManagementDetails = "getCashManagementDetails"
)

// Endpoints lists the extraction APIs in pull order.
var Endpoints = []string{
	APIFiscalInvoice,
	APIGuestChecks,
	APIChargeBack,
	APITransactions,
	APICashManagementDetails,
}

var ErrUnknownAPI = errors.New("unknown_api")

// Metadata carries the response envelope's request bookkeeping.
type Metadata struct {
	APIEndpoint      string `json:"api_endpoint"`
	TimestampRequest string `json:"timestamp_request"`
	CorrelationID    string `json:"correlation_id"`
}

// Payload wraps the records one endpoint returned for a store and
// business date. Data stays raw so the envelope round-trips through the
// lake without re-shaping endpoint-specific records.
type Payload struct {
	BusDt   string          `json:"busDt"`
	StoreID string          `json:"storeId"`
	Data    json.RawMessage `json:"data"`
}

// Envelope is the API response shape every endpoint shares and the unit
// persisted into the data lake.
type Envelope struct {
	Metadata Metadata `json:"metadata"`
	Payload  Payload  `json:"payload"`
}

// GuestCheckDocument reassembles the normalization input from a
// guest-check envelope: the request timestamp and store become the batch
// scoped curUTC/locRef, the payload records become the checks.
func (e Envelope) GuestCheckDocument() (normdomain.Document, error) {
	if e.Metadata.APIEndpoint != APIGuestChecks {
		return normdomain.Document{}, fmt.Errorf("envelope is %s, not %s", e.Metadata.APIEndpoint, APIGuestChecks)
	}
	var checks []normdomain.GuestCheck
	if len(e.Payload.Data) > 0 {
		if err := json.Unmarshal(e.Payload.Data, &checks); err != nil {
			return normdomain.Document{}, fmt.Errorf("decode guest checks: %w", err)
		}
	}
	return normdomain.Document{
		CurUTC:      e.Metadata.TimestampRequest,
		LocRef:      e.Payload.StoreID,
		GuestChecks: checks,
	}, nil
}

// FiscalInvoice is one record of the getFiscalInvoice endpoint.
type FiscalInvoice struct {
	InvoiceID   string          `json:"invoiceId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	IssueDate   string          `json:"issueDate"`
	StoreID     string          `json:"storeId"`
}

// ChargeBack is one record of the getChargeBack endpoint.
type ChargeBack struct {
	ChargeBackID  string          `json:"chargeBackId"`
	TransactionID string          `json:"transactionId"`
	Reason        string          `json:"reason"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	StoreID       string          `json:"storeId"`
}

// Transaction is one record of the getTransactions endpoint.
type Transaction struct {
	TransactionID string          `json:"transactionId"`
	Media         string          `json:"media"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     string          `json:"timestamp"`
	StoreID       string          `json:"storeId"`
}

// CashManagementDetail is one record of getCashManagementDetails.
type CashManagementDetail struct {
	CashManagementID string          `json:"cashManagementId"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	ClosingBalance   decimal.Decimal `json:"closingBalance"`
	Date             string          `json:"date"`
	StoreID          string          `json:"storeId"`
}

// Service simulates the upstream extraction API. A real deployment swaps
// this for an HTTP client; the envelope contract stays identical.
type Service interface {
	Fetch(ctx context.Context, api string, businessDate time.Time, storeID string) (Envelope, error)
}
