package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

// RecordRequest describes an incoming payment. TenantName is free text used
// only to decide whether matching is attempted; it does not narrow the
// candidate set.
type RecordRequest struct {
	Amount          decimal.Decimal
	Date            *time.Time
	ReferenceNumber *string
	Source          ledgerdomain.PaymentSource
	TenantName      string
}

type RecordResponse struct {
	Payment        ledgerdomain.Payment      `json:"payment"`
	MatchedInvoice *ledgerdomain.RentInvoice `json:"matched_invoice,omitempty"`
}

// Service records incoming payments and auto-matches them against
// outstanding invoices by amount tolerance.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (RecordResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.Payment, error)
	List(ctx context.Context) ([]ledgerdomain.Payment, error)
}

var (
	ErrPaymentNotFound = errors.New("payment_not_found")
)
