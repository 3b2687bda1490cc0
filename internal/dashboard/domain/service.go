package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// MonthSummary aggregates collection progress for one billing period.
type MonthSummary struct {
	Month             int             `json:"month"`
	Year              int             `json:"year"`
	InvoiceCount      int             `json:"invoice_count"`
	PaidCount         int             `json:"paid_count"`
	PartialCount      int             `json:"partial_count"`
	LateCount         int             `json:"late_count"`
	UnpaidCount       int             `json:"unpaid_count"`
	BilledTotal       decimal.Decimal `json:"billed_total"`
	CollectedTotal    decimal.Decimal `json:"collected_total"`
	UnmatchedPayments int             `json:"unmatched_payments"`
}

type Service interface {
	MonthSummary(ctx context.Context, month, year int) (MonthSummary, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
