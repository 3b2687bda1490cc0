package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/mabdulrehman08/propmanager/internal/audit/domain"
	"github.com/mabdulrehman08/propmanager/internal/clock"
	"github.com/mabdulrehman08/propmanager/internal/config"
	"github.com/mabdulrehman08/propmanager/internal/events"
	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	"github.com/mabdulrehman08/propmanager/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Store    ledgerdomain.Store
	AuditSvc auditdomain.Service
	Clock    clock.Clock
	Cfg      config.Config
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
	cfg      config.Config
	outbox   *events.Outbox
	metrics  *metrics.EngineMetrics
}

func NewService(p Params) historydomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("history.service"),
		genID:    p.GenID,
		store:    p.Store,
		auditSvc: p.AuditSvc,
		clock:    p.Clock,
		cfg:      p.Cfg,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
	}
}

// Reconstruct back-computes yearly rents by dividing the current rent by
// (1 + rate) once per year walked backwards, then backfills every month that
// has no invoice for the unit yet. Dedup here is per unit, not per tenant:
// historical periods may predate the currently active tenant, so an invoice
// from any prior tenant already covers the month.
func (s *Service) Reconstruct(ctx context.Context, req historydomain.ReconstructRequest) (historydomain.ReconstructResponse, error) {
	if !req.CurrentRent.IsPositive() {
		return historydomain.ReconstructResponse{}, historydomain.ErrInvalidRent
	}
	if req.YearlyIncreasePercent.IsNegative() {
		return historydomain.ReconstructResponse{}, historydomain.ErrInvalidIncrease
	}

	now := s.clock.Now()
	currentYear := now.Year()
	currentMonth := int(now.Month())

	startYear := req.StartYear
	if startYear == 0 {
		startYear = s.cfg.HistoryStartYear
	}
	startMonth := req.StartMonth
	if startMonth == 0 {
		startMonth = s.cfg.HistoryStartMonth
	}
	if startYear > currentYear || startMonth < 1 || startMonth > 12 {
		return historydomain.ReconstructResponse{}, historydomain.ErrInvalidStart
	}

	yearly := computeYearlyRents(req.CurrentRent, req.YearlyIncreasePercent, startYear, currentYear)

	var created []ledgerdomain.RentInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := s.store.FindUnitByID(ctx, tx, req.UnitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return historydomain.ErrUnitNotFound
		}

		tenant, err := s.attributionTenant(ctx, tx, unit.ID)
		if err != nil {
			return err
		}
		if tenant == nil {
			// No tenant has ever been on the unit; nothing to attribute
			// invoices to, so the run reports rents but creates nothing.
			return nil
		}

		existing, err := s.store.FindInvoicesByUnitID(ctx, tx, unit.ID)
		if err != nil {
			return err
		}
		covered := make(map[int]struct{}, len(existing))
		for _, invoice := range existing {
			covered[invoice.Year*100+invoice.Month] = struct{}{}
		}

		notes := fmt.Sprintf(
			"Reconstructed from current rent %s at %s%% yearly increase, starting %d-%02d",
			req.CurrentRent.StringFixed(2),
			req.YearlyIncreasePercent.String(),
			startYear, startMonth,
		)

		for _, year := range yearly {
			firstMonth := 1
			lastMonth := 12
			if year.Year == startYear {
				firstMonth = startMonth
			}
			if year.Year == currentYear {
				lastMonth = currentMonth
			}
			for month := firstMonth; month <= lastMonth; month++ {
				if _, ok := covered[year.Year*100+month]; ok {
					continue
				}
				invoice := ledgerdomain.RentInvoice{
					ID:            s.genID.Generate(),
					TenantID:      tenant.ID,
					UnitID:        unit.ID,
					Month:         month,
					Year:          year.Year,
					Amount:        year.Rent,
					Status:        ledgerdomain.InvoiceStatusUnpaid,
					PaidAmount:    decimal.Zero,
					ReceiptNumber: fmt.Sprintf("HIST-%d%02d-%s", year.Year, month, unit.ID.String()),
					IsHistorical:  true,
					Notes:         notes,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				inserted, err := s.store.InsertInvoice(ctx, tx, &invoice)
				if err != nil {
					return err
				}
				if !inserted {
					continue
				}
				created = append(created, invoice)
			}
		}

		if s.outbox != nil && len(created) > 0 {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventHistoryReconstructed,
				Payload: map[string]any{
					"unit_id":         unit.ID.String(),
					"start_year":      startYear,
					"generated_count": len(created),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return historydomain.ReconstructResponse{}, err
	}

	recordID := req.UnitID.String()
	if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
		Action:     "history.reconstruct",
		EntityName: "rent_invoices",
		RecordID:   &recordID,
		Metadata: map[string]any{
			"unit_id":          req.UnitID.String(),
			"current_rent":     req.CurrentRent.StringFixed(2),
			"increase_percent": req.YearlyIncreasePercent.String(),
			"start_year":       startYear,
			"start_month":      startMonth,
			"generated_count":  len(created),
		},
	}); err != nil {
		s.log.Warn("reconstruction audit failed", zap.Error(err))
	}

	s.metrics.AddInvoicesGenerated("history", len(created))
	s.log.Info("history reconstructed",
		zap.String("unit_id", req.UnitID.String()),
		zap.Int("start_year", startYear),
		zap.Int("generated", len(created)))

	return historydomain.ReconstructResponse{
		GeneratedCount: len(created),
		YearlyRents:    yearly,
		Invoices:       created,
	}, nil
}

// computeYearlyRents walks backwards from the current year, dividing by
// (1 + rate) before each earlier year, and returns whole-unit rents in
// ascending year order. The result is non-decreasing from past to present.
func computeYearlyRents(currentRent, increasePercent decimal.Decimal, startYear, currentYear int) []historydomain.YearlyRent {
	factor := decimal.NewFromInt(1).Add(increasePercent.Div(decimal.NewFromInt(100)))

	byYear := make(map[int]decimal.Decimal, currentYear-startYear+1)
	rent := currentRent
	for year := currentYear; year >= startYear; year-- {
		byYear[year] = rent.Round(0)
		rent = rent.Div(factor)
	}

	rents := make([]historydomain.YearlyRent, 0, currentYear-startYear+1)
	for year := startYear; year <= currentYear; year++ {
		rents = append(rents, historydomain.YearlyRent{Year: year, Rent: byYear[year]})
	}
	return rents
}

// attributionTenant prefers the active tenant on the unit and falls back to
// the earliest tenant record.
func (s *Service) attributionTenant(ctx context.Context, tx *gorm.DB, unitID snowflake.ID) (*ledgerdomain.Tenant, error) {
	tenants, err := s.store.FindTenantsByUnitID(ctx, tx, unitID)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, nil
	}
	for i := range tenants {
		if tenants[i].IsActive {
			return &tenants[i], nil
		}
	}
	return &tenants[0], nil
}
