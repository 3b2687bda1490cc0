package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus tracks how much of a rent invoice has been collected.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusLate    InvoiceStatus = "late"
)

// PaymentStatus tracks whether an incoming payment has been attributed to an invoice.
type PaymentStatus string

const (
	PaymentStatusMatched   PaymentStatus = "matched"
	PaymentStatusUnmatched PaymentStatus = "unmatched"
)

// PaymentSource records where an incoming payment came from.
type PaymentSource string

const (
	PaymentSourceManual PaymentSource = "manual"
	PaymentSourceBank   PaymentSource = "bank"
	PaymentSourceOnline PaymentSource = "online"
)

// Role links a user to a property in a given capacity.
type Role string

const (
	RolePropertyOwner Role = "property_owner"
	RoleCoOwner       Role = "co_owner"
	RoleAccountant    Role = "accountant"
	RoleTenant        Role = "tenant"
	RoleSuperAdmin    Role = "super_admin"
)

// MembershipStatus is the approval state of a property-user link.
type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusApproved MembershipStatus = "approved"
	MembershipStatusRejected MembershipStatus = "rejected"
)

// Property is a building or compound owned by one or more users.
type Property struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Address   string       `gorm:"type:text" json:"address"`
	City      string       `gorm:"type:text" json:"city"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Property) TableName() string { return "properties" }

// Unit is a rentable space inside a property. Rent changes do not
// retroactively alter invoices already issued.
type Unit struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	PropertyID  snowflake.ID    `gorm:"not null;index" json:"property_id"`
	UnitNumber  string          `gorm:"type:text;not null" json:"unit_number"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_rent"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Unit) TableName() string { return "units" }

// Tenant is a lease holder on a unit. A unit accumulates tenant records
// over time as leases succeed one another; at most one should be active.
type Tenant struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UnitID     snowflake.ID `gorm:"not null;index" json:"unit_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	Phone      string       `gorm:"type:text" json:"phone"`
	LeaseStart time.Time    `gorm:"not null" json:"lease_start"`
	LeaseEnd   *time.Time   `json:"lease_end,omitempty"`
	RentDueDay int          `gorm:"not null;default:1" json:"rent_due_day"`
	IsActive   bool         `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// RentInvoice bills one tenant for one month. Uniqueness is enforced per
// (tenant, month, year); backfill additionally dedupes per unit before insert.
type RentInvoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_rent_invoices_tenant_period,priority:1" json:"tenant_id"`
	UnitID        snowflake.ID    `gorm:"not null;index" json:"unit_id"`
	Month         int             `gorm:"not null;uniqueIndex:ux_rent_invoices_tenant_period,priority:2" json:"month"`
	Year          int             `gorm:"not null;uniqueIndex:ux_rent_invoices_tenant_period,priority:3" json:"year"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'unpaid';index" json:"status"`
	PaidAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	PaymentMethod *string         `gorm:"type:text" json:"payment_method,omitempty"`
	ReceiptNumber string          `gorm:"type:text;not null" json:"receipt_number"`
	IsHistorical  bool            `gorm:"not null;default:false" json:"is_historical"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RentInvoice) TableName() string { return "rent_invoices" }

// Payment is a standalone incoming-money record. It is created once and
// mutated at most once, when matched to an invoice.
type Payment struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date             time.Time       `gorm:"not null" json:"date"`
	ReferenceNumber  *string         `gorm:"type:text" json:"reference_number,omitempty"`
	Source           PaymentSource   `gorm:"type:text;not null;default:'manual'" json:"source"`
	TenantName       string          `gorm:"type:text" json:"tenant_name"`
	Status           PaymentStatus   `gorm:"type:text;not null;default:'unmatched';index" json:"status"`
	MatchedInvoiceID *snowflake.ID   `gorm:"index" json:"matched_invoice_id,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// PropertyUser links a user to a property with a role, approval status and
// ownership percentage. Approved owner-role rows share settlement payouts.
type PropertyUser struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	PropertyID       snowflake.ID     `gorm:"not null;index" json:"property_id"`
	UserID           snowflake.ID     `gorm:"not null;index" json:"user_id"`
	Role             Role             `gorm:"type:text;not null" json:"role"`
	Status           MembershipStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	OwnershipPercent decimal.Decimal  `gorm:"type:numeric(5,2);not null;default:0" json:"ownership_percent"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (PropertyUser) TableName() string { return "property_users" }

// OwnerSettlement records an owner's share of collected rent for one period.
// Rows are keyed per (property, user, month, year); recalculation updates the
// existing row and recomputes the balance against what was already paid out.
type OwnerSettlement struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	PropertyID        snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_owner_settlements_owner_period,priority:1" json:"property_id"`
	UserID            snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_owner_settlements_owner_period,priority:2" json:"user_id"`
	Month             int             `gorm:"not null;uniqueIndex:ux_owner_settlements_owner_period,priority:3" json:"month"`
	Year              int             `gorm:"not null;uniqueIndex:ux_owner_settlements_owner_period,priority:4" json:"year"`
	TotalRent         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_rent"`
	OwnerShare        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"owner_share"`
	AmountDistributed decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_distributed"`
	Balance           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (OwnerSettlement) TableName() string { return "owner_settlements" }
