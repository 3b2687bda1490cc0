package service

import (
	"context"

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
	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
)

var oneHundred = decimal.NewFromInt(100)

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

func NewService(p Params) settlementdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settlement.service"),
		genID:    p.GenID,
		store:    p.Store,
		auditSvc: p.AuditSvc,
		clock:    p.Clock,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
	}
}

// Calculate sums the rent actually collected for the property's units in the
// period and writes one settlement row per approved owner. Rows are upserted
// on (property, user, month, year), so recalculating refreshes totals instead
// of accumulating duplicates. Ownership percentages are taken as stored: if
// they sum under 100 the remainder is deliberately left unassigned.
func (s *Service) Calculate(ctx context.Context, req settlementdomain.CalculateRequest) ([]ledgerdomain.OwnerSettlement, error) {
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		return nil, settlementdomain.ErrInvalidPeriod
	}

	var rows []ledgerdomain.OwnerSettlement
	var totalRent decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.store.FindPropertyByID(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return settlementdomain.ErrPropertyNotFound
		}

		units, err := s.store.FindUnitsByPropertyID(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		unitIDs := make([]snowflake.ID, 0, len(units))
		for _, unit := range units {
			unitIDs = append(unitIDs, unit.ID)
		}

		invoices, err := s.store.FindInvoicesByUnitIDsAndPeriod(ctx, tx, unitIDs, req.Month, req.Year)
		if err != nil {
			return err
		}
		// Collected, not billed: unpaid balances are not distributable.
		totalRent = decimal.Zero
		for _, invoice := range invoices {
			totalRent = totalRent.Add(invoice.PaidAmount)
		}

		links, err := s.store.FindPropertyUsersByPropertyID(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, link := range links {
			if link.Status != ledgerdomain.MembershipStatusApproved {
				continue
			}
			if link.Role != ledgerdomain.RolePropertyOwner && link.Role != ledgerdomain.RoleCoOwner {
				continue
			}

			share := totalRent.Mul(link.OwnershipPercent).Div(oneHundred).Round(2)
			row, err := s.store.UpsertSettlement(ctx, tx, &ledgerdomain.OwnerSettlement{
				ID:                s.genID.Generate(),
				PropertyID:        req.PropertyID,
				UserID:            link.UserID,
				Month:             req.Month,
				Year:              req.Year,
				TotalRent:         totalRent,
				OwnerShare:        share,
				AmountDistributed: decimal.Zero,
				Balance:           share,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
			if err != nil {
				return err
			}
			rows = append(rows, *row)
		}

		if s.outbox != nil && len(rows) > 0 {
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				Type: events.EventSettlementCalculated,
				Payload: map[string]any{
					"property_id": req.PropertyID.String(),
					"month":       req.Month,
					"year":        req.Year,
					"total_rent":  totalRent.StringFixed(2),
					"owner_count": len(rows),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordID := req.PropertyID.String()
	if err := s.auditSvc.Record(ctx, auditdomain.RecordInput{
		Action:     "settlement.calculate",
		EntityName: "owner_settlements",
		RecordID:   &recordID,
		Metadata: map[string]any{
			"property_id": req.PropertyID.String(),
			"month":       req.Month,
			"year":        req.Year,
			"total_rent":  totalRent.StringFixed(2),
			"owner_count": len(rows),
		},
	}); err != nil {
		s.log.Warn("settlement audit failed", zap.Error(err))
	}

	s.metrics.AddSettlementsComputed(len(rows))
	s.log.Info("settlements calculated",
		zap.String("property_id", req.PropertyID.String()),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.String("total_rent", totalRent.StringFixed(2)),
		zap.Int("owners", len(rows)))

	return rows, nil
}

func (s *Service) ListByProperty(ctx context.Context, propertyID snowflake.ID) ([]ledgerdomain.OwnerSettlement, error) {
	return s.store.FindSettlementsByPropertyID(ctx, s.db, propertyID)
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID) ([]ledgerdomain.OwnerSettlement, error) {
	return s.store.FindSettlementsByUserID(ctx, s.db, userID)
}
