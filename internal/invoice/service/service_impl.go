package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/mabdulrehman08/propmanager/internal/audit/domain"
	"github.com/mabdulrehman08/propmanager/internal/clock"
	"github.com/mabdulrehman08/propmanager/internal/events"
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	"github.com/mabdulrehman08/propmanager/internal/observability/metrics"
)

const defaultPaymentMethod = "cash"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Store    ledgerdomain.Store
	AuditSvc auditdomain.Service
	Clock    clock.Clock
	Outbox   *events.Outbox         `optional:"true"`
	Metrics  *metrics.EngineMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	store    ledgerdomain.Store
	auditSvc auditdomain.Service
	clock    clock.Clock
	outbox   *events.Outbox
	metrics  *metrics.EngineMetrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		store:    p.Store,
		auditSvc: p.AuditSvc,
		clock:    p.Clock,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
	}
}

// Generate creates one unpaid invoice per active tenant for the period.
// Tenants already invoiced for the period are skipped, so a repeated run is a
// no-op per tenant. Two active tenants on the same unit each get an invoice;
// billing is per tenant, not per unit.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResponse, error) {
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidPeriod
	}

	var created []ledgerdomain.RentInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenants, err := s.store.ListActiveTenants(ctx, tx)
		if err != nil {
			return err
		}

		existing, err := s.store.FindInvoicesByPeriod(ctx, tx, req.Month, req.Year)
		if err != nil {
			return err
		}
		invoiced := make(map[snowflake.ID]struct{}, len(existing))
		for _, invoice := range existing {
			invoiced[invoice.TenantID] = struct{}{}
		}

		now := s.clock.Now()
		for _, tenant := range tenants {
			if _, ok := invoiced[tenant.ID]; ok {
				continue
			}
			unit, err := s.store.FindUnitByID(ctx, tx, tenant.UnitID)
			if err != nil {
				return err
			}
			if unit == nil {
				// Dangling tenant record; not this engine's problem to repair.
				s.log.Warn("active tenant without unit, skipping",
					zap.String("tenant_id", tenant.ID.String()))
				continue
			}

			invoice := ledgerdomain.RentInvoice{
				ID:            s.genID.Generate(),
				TenantID:      tenant.ID,
				UnitID:        unit.ID,
				Month:         req.Month,
				Year:          req.Year,
				Amount:        unit.MonthlyRent,
				Status:        ledgerdomain.InvoiceStatusUnpaid,
				PaidAmount:    decimal.Zero,
				ReceiptNumber: fmt.Sprintf("INV-%d%02d-%s", req.Year, req.Month, tenant.ID.String()),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			inserted, err := s.store.InsertInvoice(ctx, tx, &invoice)
			if err != nil {
				return err
			}
			if !inserted {
				// A concurrent run won the insert; already generated.
				continue
			}
			created = append(created, invoice)
		}

		if s.outbox != nil && len(created) > 0 {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventInvoicesGenerated,
				Payload: map[string]any{
					"month":           req.Month,
					"year":            req.Year,
					"generated_count": len(created),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}

	if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
		Action:     "invoice.generate",
		EntityName: "rent_invoices",
		Metadata: map[string]any{
			"month":           req.Month,
			"year":            req.Year,
			"generated_count": len(created),
		},
	}); err != nil {
		s.log.Warn("generation audit failed", zap.Error(err))
	}

	s.metrics.AddInvoicesGenerated("generation", len(created))
	s.log.Info("invoices generated",
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Int("count", len(created)))

	return invoicedomain.GenerateResponse{
		GeneratedCount: len(created),
		Invoices:       created,
	}, nil
}

// Pay applies a payment to an invoice and derives its resulting status.
func (s *Service) Pay(ctx context.Context, req invoicedomain.PayRequest) (*ledgerdomain.RentInvoice, error) {
	var updated *ledgerdomain.RentInvoice
	var before map[string]any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.store.FindInvoiceByID(ctx, tx, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrInvoiceNotFound
		}

		paid := invoice.Amount
		if req.PaidAmount != nil {
			paid = *req.PaidAmount
		}
		if paid.IsNegative() || paid.GreaterThan(invoice.Amount) {
			return invoicedomain.ErrInvalidAmount
		}

		method := defaultPaymentMethod
		if req.PaymentMethod != nil && *req.PaymentMethod != "" {
			method = *req.PaymentMethod
		}

		dueDay := 1
		tenant, err := s.store.FindTenantByID(ctx, tx, invoice.TenantID)
		if err != nil {
			return err
		}
		if tenant != nil && tenant.RentDueDay >= 1 && tenant.RentDueDay <= 28 {
			dueDay = tenant.RentDueDay
		}

		now := s.clock.Now()
		before = map[string]any{
			"status":      string(invoice.Status),
			"paid_amount": invoice.PaidAmount.StringFixed(2),
		}

		invoice.Status = deriveStatus(invoice, paid, dueDay, now)
		invoice.PaidAmount = paid
		today := truncateToDay(now)
		invoice.PaidDate = &today
		invoice.PaymentMethod = &method
		invoice.UpdatedAt = now

		if err := s.store.UpdateInvoicePayment(ctx, tx, invoice); err != nil {
			return err
		}

		if s.outbox != nil {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventInvoicePaid,
				Payload: map[string]any{
					"invoice_id":  invoice.ID.String(),
					"status":      string(invoice.Status),
					"paid_amount": invoice.PaidAmount.StringFixed(2),
				},
			}); err != nil {
				return err
			}
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordID := updated.ID.String()
	if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
		Action:     "invoice.pay",
		EntityName: "rent_invoices",
		RecordID:   &recordID,
		Before:     before,
		After: map[string]any{
			"status":      string(updated.Status),
			"paid_amount": updated.PaidAmount.StringFixed(2),
		},
	}); err != nil {
		s.log.Warn("payment audit failed", zap.Error(err))
	}

	s.metrics.IncPaymentApplied(string(updated.Status))
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.RentInvoice, error) {
	invoice, err := s.store.FindInvoiceByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) ListByPeriod(ctx context.Context, month, year int) ([]ledgerdomain.RentInvoice, error) {
	if month < 1 || month > 12 || year == 0 {
		return nil, invoicedomain.ErrInvalidPeriod
	}
	return s.store.FindInvoicesByPeriod(ctx, s.db, month, year)
}

func (s *Service) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]ledgerdomain.RentInvoice, error) {
	return s.store.FindInvoicesByTenantID(ctx, s.db, tenantID)
}

// deriveStatus decides paid/partial/late. Full payment after the tenant's due
// day for the invoice period is late; anything under the billed amount is
// partial regardless of date.
func deriveStatus(invoice *ledgerdomain.RentInvoice, paid decimal.Decimal, dueDay int, now time.Time) ledgerdomain.InvoiceStatus {
	if paid.LessThan(invoice.Amount) {
		return ledgerdomain.InvoiceStatusPartial
	}
	dueDate := time.Date(invoice.Year, time.Month(invoice.Month), dueDay, 0, 0, 0, 0, time.UTC)
	if truncateToDay(now).After(dueDate) {
		return ledgerdomain.InvoiceStatusLate
	}
	return ledgerdomain.InvoiceStatusPaid
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
