package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mabdulrehman08/propmanager/internal/cache"
	dashboarddomain "github.com/mabdulrehman08/propmanager/internal/dashboard/domain"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

const summaryTTL = 30 * time.Second

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Store ledgerdomain.Store
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	store ledgerdomain.Store
	cache *cache.TTLCache[string, dashboarddomain.MonthSummary]
}

func NewService(p Params) dashboarddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		store: p.Store,
		cache: cache.NewTTLCache[string, dashboarddomain.MonthSummary](),
	}
}

func (s *Service) MonthSummary(ctx context.Context, month, year int) (dashboarddomain.MonthSummary, error) {
	if month < 1 || month > 12 || year == 0 {
		return dashboarddomain.MonthSummary{}, dashboarddomain.ErrInvalidPeriod
	}

	key := fmt.Sprintf("%d-%02d", year, month)
	if summary, ok := s.cache.Get(key); ok {
		return summary, nil
	}

	invoices, err := s.store.FindInvoicesByPeriod(ctx, s.db, month, year)
	if err != nil {
		return dashboarddomain.MonthSummary{}, err
	}

	summary := dashboarddomain.MonthSummary{
		Month:          month,
		Year:           year,
		InvoiceCount:   len(invoices),
		BilledTotal:    decimal.Zero,
		CollectedTotal: decimal.Zero,
	}
	for _, invoice := range invoices {
		summary.BilledTotal = summary.BilledTotal.Add(invoice.Amount)
		summary.CollectedTotal = summary.CollectedTotal.Add(invoice.PaidAmount)
		switch invoice.Status {
		case ledgerdomain.InvoiceStatusPaid:
			summary.PaidCount++
		case ledgerdomain.InvoiceStatusPartial:
			summary.PartialCount++
		case ledgerdomain.InvoiceStatusLate:
			summary.LateCount++
		default:
			summary.UnpaidCount++
		}
	}

	payments, err := s.store.ListPayments(ctx, s.db)
	if err != nil {
		return dashboarddomain.MonthSummary{}, err
	}
	for _, payment := range payments {
		if payment.Status == ledgerdomain.PaymentStatusUnmatched {
			summary.UnmatchedPayments++
		}
	}

	s.cache.Set(key, summary, summaryTTL)
	return summary, nil
}
