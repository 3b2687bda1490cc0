package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/mabdulrehman08/propmanager/internal/audit/domain"
	"github.com/mabdulrehman08/propmanager/internal/clock"
	"github.com/mabdulrehman08/propmanager/internal/events"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	"github.com/mabdulrehman08/propmanager/internal/observability/metrics"
	paymentdomain "github.com/mabdulrehman08/propmanager/internal/payment/domain"
)

// matchTolerance is the absolute currency-unit tolerance for auto-matching:
// a payment matches an invoice when the amounts differ by less than 1 PKR.
var matchTolerance = decimal.NewFromInt(1)

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

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		store:    p.Store,
		auditSvc: p.AuditSvc,
		clock:    p.Clock,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
	}
}

// Record stores the payment, then attempts an auto-match when both an amount
// and a tenant name are present. The match predicate compares amounts only;
// candidates are every invoice not yet paid, newest period first, and the
// first within tolerance wins. A payment that matches nothing stays
// unmatched; that is not an error.
func (s *Service) Record(ctx context.Context, req paymentdomain.RecordRequest) (paymentdomain.RecordResponse, error) {
	now := s.clock.Now()
	date := now
	if req.Date != nil {
		date = *req.Date
	}
	source := req.Source
	if source == "" {
		source = ledgerdomain.PaymentSourceManual
	}

	payment := ledgerdomain.Payment{
		ID:              s.genID.Generate(),
		Amount:          req.Amount,
		Date:            date,
		ReferenceNumber: req.ReferenceNumber,
		Source:          source,
		TenantName:      strings.TrimSpace(req.TenantName),
		Status:          ledgerdomain.PaymentStatusUnmatched,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var matched *ledgerdomain.RentInvoice
	var matchBefore map[string]any
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.CreatePayment(ctx, tx, &payment); err != nil {
			return err
		}

		if s.outbox != nil {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventPaymentRecorded,
				Payload: map[string]any{
					"payment_id": payment.ID.String(),
					"amount":     payment.Amount.StringFixed(2),
					"source":     string(payment.Source),
				},
			}); err != nil {
				return err
			}
		}

		if payment.TenantName == "" || !payment.Amount.IsPositive() {
			return nil
		}

		candidate, err := s.findMatch(ctx, tx, payment.Amount)
		if err != nil {
			return err
		}
		if candidate == nil {
			return nil
		}

		matchBefore = map[string]any{
			"status":      string(candidate.Status),
			"paid_amount": candidate.PaidAmount.StringFixed(2),
		}
		candidate.Status = ledgerdomain.InvoiceStatusPaid
		candidate.PaidAmount = payment.Amount
		paidDate := payment.Date
		candidate.PaidDate = &paidDate
		candidate.UpdatedAt = now
		if err := s.store.UpdateInvoicePayment(ctx, tx, candidate); err != nil {
			return err
		}

		payment.Status = ledgerdomain.PaymentStatusMatched
		payment.MatchedInvoiceID = &candidate.ID
		payment.UpdatedAt = now
		if err := s.store.MarkPaymentMatched(ctx, tx, &payment); err != nil {
			return err
		}

		if s.outbox != nil {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventPaymentMatched,
				Payload: map[string]any{
					"payment_id": payment.ID.String(),
					"invoice_id": candidate.ID.String(),
					"amount":     payment.Amount.StringFixed(2),
				},
			}); err != nil {
				return err
			}
		}

		matched = candidate
		return nil
	})
	if err != nil {
		return paymentdomain.RecordResponse{}, err
	}

	if matched != nil {
		invoiceID := matched.ID.String()
		if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
			Action:     "payment.match",
			EntityName: "rent_invoices",
			RecordID:   &invoiceID,
			Before:     matchBefore,
			After: map[string]any{
				"status":      string(matched.Status),
				"paid_amount": matched.PaidAmount.StringFixed(2),
			},
			Metadata: map[string]any{
				"payment_id": payment.ID.String(),
			},
		}); err != nil {
			s.log.Warn("match audit failed", zap.Error(err))
		}
	}

	recordID := payment.ID.String()
	if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
		Action:     "payment.record",
		EntityName: "payments",
		RecordID:   &recordID,
		After: map[string]any{
			"amount": payment.Amount.StringFixed(2),
			"status": string(payment.Status),
			"source": string(payment.Source),
		},
	}); err != nil {
		s.log.Warn("payment audit failed", zap.Error(err))
	}

	s.metrics.IncPaymentRecorded(string(payment.Status))
	return paymentdomain.RecordResponse{
		Payment:        payment,
		MatchedInvoice: matched,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*ledgerdomain.Payment, error) {
	payment, err := s.store.FindPaymentByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentdomain.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) List(ctx context.Context) ([]ledgerdomain.Payment, error) {
	return s.store.ListPayments(ctx, s.db)
}

func (s *Service) findMatch(ctx context.Context, tx *gorm.DB, amount decimal.Decimal) (*ledgerdomain.RentInvoice, error) {
	outstanding, err := s.store.FindOutstandingInvoices(ctx, tx)
	if err != nil {
		return nil, err
	}
	for i := range outstanding {
		diff := outstanding[i].Amount.Sub(amount).Abs()
		if diff.LessThan(matchTolerance) {
			return &outstanding[i], nil
		}
	}
	return nil, nil
}
