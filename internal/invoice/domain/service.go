package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

type GenerateRequest struct {
	Month int
	Year  int
}

type GenerateResponse struct {
	GeneratedCount int                        `json:"generated_count"`
	Invoices       []ledgerdomain.RentInvoice `json:"invoices"`
}

// PayRequest applies money to an invoice. A nil PaidAmount means the
// invoice's full billed amount; a nil PaymentMethod defaults to cash.
type PayRequest struct {
	InvoiceID     snowflake.ID
	PaidAmount    *decimal.Decimal
	PaymentMethod *string
}

// Service is the invoice engine: period generation and payment application.
// Payment application is the single authority for invoice status transitions.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Pay(ctx context.Context, req PayRequest) (*ledgerdomain.RentInvoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.RentInvoice, error)
	ListByPeriod(ctx context.Context, month, year int) ([]ledgerdomain.RentInvoice, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]ledgerdomain.RentInvoice, error)
}

var (
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrInvalidAmount   = errors.New("invalid_amount")
)
