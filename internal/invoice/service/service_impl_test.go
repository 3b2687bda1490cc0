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
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
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
	store := ledgerrepo.Provide()
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
		Store:    store,
		AuditSvc: auditSvc,
		Clock:    fixedClock{now: now},
	}).(*Service)
	return svc, db, node
}

func seedTenant(t *testing.T, db *gorm.DB, node *snowflake.Node, rent int64, dueDay int, active bool) ledgerdomain.Tenant {
	t.Helper()

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	unit := ledgerdomain.Unit{
		ID:          node.Generate(),
		PropertyID:  node.Generate(),
		UnitNumber:  "G-1",
		MonthlyRent: decimal.NewFromInt(rent),
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
		RentDueDay: dueDay,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func TestGenerateCreatesInvoicesForActiveTenants(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	active := seedTenant(t, db, node, 45000, 5, true)
	seedTenant(t, db, node, 52000, 5, false)

	resp, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.GeneratedCount != 1 {
		t.Fatalf("expected 1 invoice, got %d", resp.GeneratedCount)
	}

	invoice := resp.Invoices[0]
	if invoice.TenantID != active.ID {
		t.Fatal("invoice attributed to the wrong tenant")
	}
	if !invoice.Amount.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("expected amount 45000, got %s", invoice.Amount)
	}
	if invoice.Status != ledgerdomain.InvoiceStatusUnpaid {
		t.Fatalf("expected unpaid status, got %s", invoice.Status)
	}
	want := fmt.Sprintf("INV-202506-%s", active.ID.String())
	if invoice.ReceiptNumber != want {
		t.Fatalf("expected receipt %s, got %s", want, invoice.ReceiptNumber)
	}
}

func TestGenerateIsIdempotentPerPeriod(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	seedTenant(t, db, node, 45000, 5, true)

	first, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.GeneratedCount != 1 {
		t.Fatalf("expected 1 invoice on first run, got %d", first.GeneratedCount)
	}

	second, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.GeneratedCount != 0 {
		t.Fatalf("expected repeated run to create nothing, got %d", second.GeneratedCount)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM rent_invoices`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 invoice row, got %d", count)
	}

	// A new period does generate again.
	third, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 7, Year: 2025})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.GeneratedCount != 1 {
		t.Fatalf("expected 1 invoice for the new period, got %d", third.GeneratedCount)
	}
}

func TestGenerateSkipsTenantWithoutUnit(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc, db, node := setupService(t, now)
	ctx := context.Background()

	tenant := ledgerdomain.Tenant{
		ID:         node.Generate(),
		UnitID:     node.Generate(), // no such unit
		Name:       "Sana Tariq",
		LeaseStart: now,
		RentDueDay: 5,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	resp, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.GeneratedCount != 0 {
		t.Fatalf("expected no invoices, got %d", resp.GeneratedCount)
	}
}

func TestGenerateRejectsInvalidPeriod(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := setupService(t, now)
	ctx := context.Background()

	cases := []invoicedomain.GenerateRequest{
		{Month: 0, Year: 2025},
		{Month: 13, Year: 2025},
		{Month: 6, Year: 0},
	}
	for _, req := range cases {
		if _, err := svc.Generate(ctx, req); !errors.Is(err, invoicedomain.ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod for %+v, got %v", req, err)
		}
	}
}

func TestPayFullOnTimeMarksPaid(t *testing.T) {
	// Due day 5, paying on the 3rd.
	now := time.Date(2025, time.June, 3, 14, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	tenant := seedTenant(t, svc.db, node, 45000, 5, true)
	gen, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	invoiceID := gen.Invoices[0].ID

	paid, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: invoiceID})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != ledgerdomain.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}
	if !paid.PaidAmount.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("expected full amount applied by default, got %s", paid.PaidAmount)
	}
	if paid.PaymentMethod == nil || *paid.PaymentMethod != "cash" {
		t.Fatal("expected default payment method cash")
	}
	if paid.PaidDate == nil || !paid.PaidDate.Equal(time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected paid date truncated to day, got %v", paid.PaidDate)
	}
	if paid.TenantID != tenant.ID {
		t.Fatal("wrong tenant on invoice")
	}
}

func TestPayFullAfterDueDayMarksLate(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	seedTenant(t, svc.db, node, 45000, 5, true)
	gen, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	paid, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: gen.Invoices[0].ID})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != ledgerdomain.InvoiceStatusLate {
		t.Fatalf("expected late, got %s", paid.Status)
	}
}

func TestPayPartialAmountMarksPartial(t *testing.T) {
	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	seedTenant(t, svc.db, node, 45000, 5, true)
	gen, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	amount := decimal.NewFromInt(20000)
	paid, err := svc.Pay(ctx, invoicedomain.PayRequest{
		InvoiceID:  gen.Invoices[0].ID,
		PaidAmount: &amount,
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != ledgerdomain.InvoiceStatusPartial {
		t.Fatalf("expected partial, got %s", paid.Status)
	}
	if !paid.PaidAmount.Equal(amount) {
		t.Fatalf("expected paid amount 20000, got %s", paid.PaidAmount)
	}
}

func TestPayRejectsOutOfBoundsAmounts(t *testing.T) {
	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	seedTenant(t, svc.db, node, 45000, 5, true)
	gen, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: 6, Year: 2025})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	invoiceID := gen.Invoices[0].ID

	negative := decimal.NewFromInt(-1)
	if _, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: invoiceID, PaidAmount: &negative}); !errors.Is(err, invoicedomain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	over := decimal.NewFromInt(45001)
	if _, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: invoiceID, PaidAmount: &over}); !errors.Is(err, invoicedomain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for overpayment, got %v", err)
	}

	// Zero is a legal amount; it records a partial of nothing paid.
	zero := decimal.Zero
	paid, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: invoiceID, PaidAmount: &zero})
	if err != nil {
		t.Fatalf("pay zero: %v", err)
	}
	if paid.Status != ledgerdomain.InvoiceStatusPartial {
		t.Fatalf("expected partial for zero amount, got %s", paid.Status)
	}
}

func TestPayUnknownInvoice(t *testing.T) {
	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	svc, _, node := setupService(t, now)
	ctx := context.Background()

	if _, err := svc.Pay(ctx, invoicedomain.PayRequest{InvoiceID: node.Generate()}); !errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}
