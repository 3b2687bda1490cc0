package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mabdulrehman08/propmanager/internal/config"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

// Run loads a small demo dataset for local development. It is a no-op unless
// SEED_DEMO_DATA is set, and skips entirely when any property already exists.
func Run(ctx context.Context, cfg config.Config, db *gorm.DB, genID *snowflake.Node, store ledgerdomain.Store, log *zap.Logger) error {
	if !cfg.SeedDemoData {
		return nil
	}
	log = log.Named("seed")

	existing, err := store.ListProperties(ctx, db)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("demo data skipped, properties already present")
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property := &ledgerdomain.Property{
			ID:      genID.Generate(),
			Name:    "Gulberg Heights",
			Address: "14-B Main Boulevard",
			City:    "Lahore",
		}
		if err := store.CreateProperty(ctx, tx, property); err != nil {
			return err
		}

		units := []struct {
			number string
			rent   int64
		}{
			{"G-1", 45000},
			{"G-2", 52000},
			{"F-1", 38000},
		}
		tenantNames := []string{"Ahmed Raza", "Sana Tariq", "Bilal Khan"}

		leaseStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		for i, u := range units {
			unit := &ledgerdomain.Unit{
				ID:          genID.Generate(),
				PropertyID:  property.ID,
				UnitNumber:  u.number,
				MonthlyRent: decimal.NewFromInt(u.rent),
			}
			if err := store.CreateUnit(ctx, tx, unit); err != nil {
				return err
			}

			tenant := &ledgerdomain.Tenant{
				ID:         genID.Generate(),
				UnitID:     unit.ID,
				Name:       tenantNames[i],
				LeaseStart: leaseStart,
				RentDueDay: 5,
				IsActive:   true,
			}
			if err := store.CreateTenant(ctx, tx, tenant); err != nil {
				return err
			}
		}

		owners := []struct {
			role    ledgerdomain.Role
			percent int64
		}{
			{ledgerdomain.RolePropertyOwner, 60},
			{ledgerdomain.RoleCoOwner, 40},
		}
		for _, o := range owners {
			link := &ledgerdomain.PropertyUser{
				ID:               genID.Generate(),
				PropertyID:       property.ID,
				UserID:           genID.Generate(),
				Role:             o.role,
				Status:           ledgerdomain.MembershipStatusApproved,
				OwnershipPercent: decimal.NewFromInt(o.percent),
			}
			if err := store.CreatePropertyUser(ctx, tx, link); err != nil {
				return err
			}
		}

		log.Info("demo data loaded", zap.String("property", property.Name))
		return nil
	})
}
