package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditrepo "github.com/mabdulrehman08/propmanager/internal/audit/repository"
	auditservice "github.com/mabdulrehman08/propmanager/internal/audit/service"
	"github.com/mabdulrehman08/propmanager/internal/config"
	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	ledgerrepo "github.com/mabdulrehman08/propmanager/internal/ledger/repository"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func setupService(t *testing.T, now time.Time) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE units (
			id INTEGER PRIMARY KEY,
			property_id INTEGER NOT NULL,
			unit_number TEXT NOT NULL,
			monthly_rent NUMERIC NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE tenants (
			id INTEGER PRIMARY KEY,
			unit_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			lease_start DATETIME NOT NULL,
			lease_end DATETIME,
			rent_due_day INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE rent_invoices (
			id INTEGER PRIMARY KEY,
			tenant_id INTEGER NOT NULL,
			unit_id INTEGER NOT NULL,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			amount NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'unpaid',
			paid_amount NUMERIC NOT NULL DEFAULT 0,
			paid_date DATETIME,
			payment_method TEXT,
			receipt_number TEXT NOT NULL,
			is_historical BOOLEAN NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_rent_invoices_tenant_period ON rent_invoices (tenant_id, month, year)`,
		`CREATE TABLE audit_logs (
			id INTEGER PRIMARY KEY,
			user_id INTEGER,
			action TEXT NOT NULL,
			table_name TEXT NOT NULL,
			record_id TEXT,
			metadata TEXT,
			ip_address TEXT,
			user_agent TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("ddl: %v", err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  auditrepo.Provide(),
	})

	svc := NewService(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Store:    ledgerrepo.Provide(),
		AuditSvc: auditSvc,
		Clock:    fixedClock{now: now},
		Cfg:      config.Config{HistoryStartYear: 2015, HistoryStartMonth: 1},
	}).(*Service)
	return svc, db, node
}

func seedUnitWithTenant(t *testing.T, db *gorm.DB, node *snowflake.Node, active bool) (ledgerdomain.Unit, ledgerdomain.Tenant) {
	t.Helper()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	unit := ledgerdomain.Unit{
		ID:          node.Generate(),
		PropertyID:  node.Generate(),
		UnitNumber:  "G-1",
		MonthlyRent: decimal.NewFromInt(45000),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	tenant := ledgerdomain.Tenant{
		ID:         node.Generate(),
		UnitID:     unit.ID,
		Name:       "Ahmed Raza",
		LeaseStart: now,
		RentDueDay: 5,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return unit, tenant
}

func TestComputeYearlyRentsReverseCompounding(t *testing.T) {
	rents := computeYearlyRents(decimal.NewFromInt(45000), decimal.NewFromInt(10), 2015, 2025)

	if len(rents) != 11 {
		t.Fatalf("expected 11 years, got %d", len(rents))
	}
	if rents[0].Year != 2015 || rents[len(rents)-1].Year != 2025 {
		t.Fatalf("expected ascending years 2015..2025, got %d..%d", rents[0].Year, rents[len(rents)-1].Year)
	}
	if !rents[len(rents)-1].Rent.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("expected current year to keep the current rent, got %s", rents[len(rents)-1].Rent)
	}
	for i := 1; i < len(rents); i++ {
		if rents[i].Rent.LessThan(rents[i-1].Rent) {
			t.Fatalf("rents must be non-decreasing: %s then %s", rents[i-1].Rent, rents[i].Rent)
		}
	}
	// One step back from 45000 at 10% is 40909.
	if !rents[len(rents)-2].Rent.Equal(decimal.NewFromInt(40909)) {
		t.Fatalf("expected 2024 rent 40909, got %s", rents[len(rents)-2].Rent)
	}
}

func TestComputeYearlyRentsZeroIncrease(t *testing.T) {
	rents := computeYearlyRents(decimal.NewFromInt(30000), decimal.Zero, 2020, 2022)
	for _, yr := range rents {
		if !yr.Rent.Equal(decimal.NewFromInt(30000)) {
			t.Fatalf("expected flat rent with zero increase, got %s for %d", yr.Rent, yr.Year)
		}
	}
}

func TestReconstructBackfillsUncoveredMonths(t *testing.T) {
	// Clock at 2025-06 with start 2024-03 gives 10 months in 2024 and 6 in 2025.
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	unit, tenant := seedUnitWithTenant(t, db, node, true)

	resp, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                unit.ID,
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2024,
		StartMonth:            3,
	})
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if resp.GeneratedCount != 16 {
		t.Fatalf("expected 16 invoices, got %d", resp.GeneratedCount)
	}

	for _, invoice := range resp.Invoices {
		if !invoice.IsHistorical {
			t.Fatal("expected historical flag set")
		}
		if invoice.TenantID != tenant.ID {
			t.Fatal("expected attribution to the active tenant")
		}
		if invoice.Year == 2024 && invoice.Month < 3 {
			t.Fatalf("month %d-2024 is before the start boundary", invoice.Month)
		}
		if invoice.Year == 2025 && invoice.Month > 6 {
			t.Fatalf("month %d-2025 is after the current month", invoice.Month)
		}
	}

	// The 2024 months use the stepped-back rent, 2025 months the current rent.
	for _, invoice := range resp.Invoices {
		switch invoice.Year {
		case 2024:
			if !invoice.Amount.Equal(decimal.NewFromInt(40909)) {
				t.Fatalf("expected 2024 amount 40909, got %s", invoice.Amount)
			}
		case 2025:
			if !invoice.Amount.Equal(decimal.NewFromInt(45000)) {
				t.Fatalf("expected 2025 amount 45000, got %s", invoice.Amount)
			}
		}
	}
}

func TestReconstructSecondRunCreatesNothing(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	unit, _ := seedUnitWithTenant(t, db, node, true)
	req := historydomain.ReconstructRequest{
		UnitID:                unit.ID,
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2024,
		StartMonth:            3,
	}

	first, err := svc.Reconstruct(ctx, req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.GeneratedCount == 0 {
		t.Fatal("expected first run to create invoices")
	}

	second, err := svc.Reconstruct(ctx, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.GeneratedCount != 0 {
		t.Fatalf("expected second run to create nothing, got %d", second.GeneratedCount)
	}
}

func TestReconstructSkipsMonthsAlreadyInvoiced(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	unit, tenant := seedUnitWithTenant(t, db, node, true)

	// An existing live invoice for 2025-05 must not be duplicated.
	existing := ledgerdomain.RentInvoice{
		ID:            node.Generate(),
		TenantID:      tenant.ID,
		UnitID:        unit.ID,
		Month:         5,
		Year:          2025,
		Amount:        decimal.NewFromInt(45000),
		Status:        ledgerdomain.InvoiceStatusPaid,
		PaidAmount:    decimal.NewFromInt(45000),
		ReceiptNumber: "INV-202505-x",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	resp, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                unit.ID,
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2025,
		StartMonth:            1,
	})
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if resp.GeneratedCount != 5 {
		t.Fatalf("expected 5 invoices (6 months minus 1 covered), got %d", resp.GeneratedCount)
	}
	for _, invoice := range resp.Invoices {
		if invoice.Month == 5 && invoice.Year == 2025 {
			t.Fatal("covered month must not be backfilled")
		}
	}
}

func TestReconstructWithoutTenantReportsRentsOnly(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	unit := ledgerdomain.Unit{
		ID:          node.Generate(),
		PropertyID:  node.Generate(),
		UnitNumber:  "F-2",
		MonthlyRent: decimal.NewFromInt(38000),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	resp, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                unit.ID,
		CurrentRent:           decimal.NewFromInt(38000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2024,
		StartMonth:            1,
	})
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if resp.GeneratedCount != 0 {
		t.Fatalf("expected no invoices without a tenant, got %d", resp.GeneratedCount)
	}
	if len(resp.YearlyRents) != 2 {
		t.Fatalf("expected yearly rents still reported, got %d", len(resp.YearlyRents))
	}
}

func TestReconstructValidation(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	if _, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:      node.Generate(),
		CurrentRent: decimal.Zero,
	}); !errors.Is(err, historydomain.ErrInvalidRent) {
		t.Fatalf("expected ErrInvalidRent, got %v", err)
	}

	if _, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                node.Generate(),
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(-5),
	}); !errors.Is(err, historydomain.ErrInvalidIncrease) {
		t.Fatalf("expected ErrInvalidIncrease, got %v", err)
	}

	if _, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                node.Generate(),
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2030,
	}); !errors.Is(err, historydomain.ErrInvalidStart) {
		t.Fatalf("expected ErrInvalidStart for a future start year, got %v", err)
	}

	if _, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                node.Generate(),
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
		StartYear:             2024,
		StartMonth:            13,
	}); !errors.Is(err, historydomain.ErrInvalidStart) {
		t.Fatalf("expected ErrInvalidStart for month 13, got %v", err)
	}

	if _, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
		UnitID:                node.Generate(),
		CurrentRent:           decimal.NewFromInt(45000),
		YearlyIncreasePercent: decimal.NewFromInt(10),
	}); !errors.Is(err, historydomain.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}
