package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Store is the durable keyed storage the reconciliation engines read from and
// write to. Methods take the database handle explicitly so callers can pass a
// transaction for read-check-write sequences. Point lookups return (nil, nil)
// when the record does not exist.
type Store interface {
	CreateProperty(ctx context.Context, db *gorm.DB, property *Property) error
	FindPropertyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	ListProperties(ctx context.Context, db *gorm.DB) ([]Property, error)

	CreateUnit(ctx context.Context, db *gorm.DB, unit *Unit) error
	FindUnitByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Unit, error)
	FindUnitsByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]Unit, error)

	CreateTenant(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindTenantsByUnitID(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]Tenant, error)
	ListActiveTenants(ctx context.Context, db *gorm.DB) ([]Tenant, error)

	// InsertInvoice reports whether the row was inserted; a conflicting
	// (tenant, month, year) row already present counts as not inserted.
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *RentInvoice) (bool, error)
	FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RentInvoice, error)
	FindInvoicesByPeriod(ctx context.Context, db *gorm.DB, month, year int) ([]RentInvoice, error)
	FindInvoicesByTenantID(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]RentInvoice, error)
	FindInvoicesByUnitID(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]RentInvoice, error)
	FindInvoicesByUnitIDsAndPeriod(ctx context.Context, db *gorm.DB, unitIDs []snowflake.ID, month, year int) ([]RentInvoice, error)
	// FindOutstandingInvoices returns every invoice whose status is not paid,
	// ordered newest period first (year desc, month desc).
	FindOutstandingInvoices(ctx context.Context, db *gorm.DB) ([]RentInvoice, error)
	UpdateInvoicePayment(ctx context.Context, db *gorm.DB, invoice *RentInvoice) error

	CreatePayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, db *gorm.DB) ([]Payment, error)
	MarkPaymentMatched(ctx context.Context, db *gorm.DB, payment *Payment) error

	CreatePropertyUser(ctx context.Context, db *gorm.DB, link *PropertyUser) error
	FindPropertyUsersByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]PropertyUser, error)
	FindPropertyUser(ctx context.Context, db *gorm.DB, userID, propertyID snowflake.ID) (*PropertyUser, error)

	// UpsertSettlement inserts or, when a row for the same
	// (property, user, month, year) exists, refreshes totals and recomputes
	// the balance against the already distributed amount.
	UpsertSettlement(ctx context.Context, db *gorm.DB, settlement *OwnerSettlement) (*OwnerSettlement, error)
	FindSettlementsByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]OwnerSettlement, error)
	FindSettlementsByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]OwnerSettlement, error)
}
