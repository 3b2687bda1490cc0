package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

type store struct{}

// Provide constructs the gorm-backed ledger store.
func Provide() domain.Store {
	return &store{}
}

func (s *store) CreateProperty(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (s *store) FindPropertyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (s *store) ListProperties(ctx context.Context, db *gorm.DB) ([]domain.Property, error) {
	var properties []domain.Property
	err := db.WithContext(ctx).Order("created_at ASC").Find(&properties).Error
	return properties, err
}

func (s *store) CreateUnit(ctx context.Context, db *gorm.DB, unit *domain.Unit) error {
	return db.WithContext(ctx).Create(unit).Error
}

func (s *store) FindUnitByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Unit, error) {
	var unit domain.Unit
	err := db.WithContext(ctx).Where("id = ?", id).First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

func (s *store) FindUnitsByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.Unit, error) {
	var units []domain.Unit
	err := db.WithContext(ctx).Where("property_id = ?", propertyID).Order("unit_number ASC").Find(&units).Error
	return units, err
}

func (s *store) CreateTenant(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Create(tenant).Error
}

func (s *store) FindTenantByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (s *store) FindTenantsByUnitID(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := db.WithContext(ctx).Where("unit_id = ?", unitID).Order("lease_start ASC").Find(&tenants).Error
	return tenants, err
}

func (s *store) ListActiveTenants(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&tenants).Error
	return tenants, err
}

func (s *store) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.RentInvoice) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO rent_invoices (
			id, tenant_id, unit_id, month, year, amount, status, paid_amount,
			paid_date, payment_method, receipt_number, is_historical, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, month, year) DO NOTHING`,
		invoice.ID,
		invoice.TenantID,
		invoice.UnitID,
		invoice.Month,
		invoice.Year,
		invoice.Amount,
		invoice.Status,
		invoice.PaidAmount,
		invoice.PaidDate,
		invoice.PaymentMethod,
		invoice.ReceiptNumber,
		invoice.IsHistorical,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *store) FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RentInvoice, error) {
	var invoice domain.RentInvoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *store) FindInvoicesByPeriod(ctx context.Context, db *gorm.DB, month, year int) ([]domain.RentInvoice, error) {
	var invoices []domain.RentInvoice
	err := db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (s *store) FindInvoicesByTenantID(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.RentInvoice, error) {
	var invoices []domain.RentInvoice
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("year DESC, month DESC").
		Find(&invoices).Error
	return invoices, err
}

func (s *store) FindInvoicesByUnitID(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]domain.RentInvoice, error) {
	var invoices []domain.RentInvoice
	err := db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("year DESC, month DESC").
		Find(&invoices).Error
	return invoices, err
}

func (s *store) FindInvoicesByUnitIDsAndPeriod(ctx context.Context, db *gorm.DB, unitIDs []snowflake.ID, month, year int) ([]domain.RentInvoice, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var invoices []domain.RentInvoice
	err := db.WithContext(ctx).
		Where("unit_id IN ? AND month = ? AND year = ?", unitIDs, month, year).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (s *store) FindOutstandingInvoices(ctx context.Context, db *gorm.DB) ([]domain.RentInvoice, error) {
	var invoices []domain.RentInvoice
	err := db.WithContext(ctx).
		Where("status <> ?", domain.InvoiceStatusPaid).
		Order("year DESC, month DESC").
		Find(&invoices).Error
	return invoices, err
}

func (s *store) UpdateInvoicePayment(ctx context.Context, db *gorm.DB, invoice *domain.RentInvoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rent_invoices
		 SET status = ?, paid_amount = ?, paid_date = ?, payment_method = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.Status,
		invoice.PaidAmount,
		invoice.PaidDate,
		invoice.PaymentMethod,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (s *store) CreatePayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (s *store) FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (s *store) ListPayments(ctx context.Context, db *gorm.DB) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := db.WithContext(ctx).Order("date DESC, id DESC").Find(&payments).Error
	return payments, err
}

func (s *store) MarkPaymentMatched(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, matched_invoice_id = ?, updated_at = ?
		 WHERE id = ?`,
		payment.Status,
		payment.MatchedInvoiceID,
		payment.UpdatedAt,
		payment.ID,
	).Error
}

func (s *store) CreatePropertyUser(ctx context.Context, db *gorm.DB, link *domain.PropertyUser) error {
	return db.WithContext(ctx).Create(link).Error
}

func (s *store) FindPropertyUsersByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.PropertyUser, error) {
	var links []domain.PropertyUser
	err := db.WithContext(ctx).Where("property_id = ?", propertyID).Order("id ASC").Find(&links).Error
	return links, err
}

func (s *store) FindPropertyUser(ctx context.Context, db *gorm.DB, userID, propertyID snowflake.ID) (*domain.PropertyUser, error) {
	var link domain.PropertyUser
	err := db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (s *store) UpsertSettlement(ctx context.Context, db *gorm.DB, settlement *domain.OwnerSettlement) (*domain.OwnerSettlement, error) {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO owner_settlements (
			id, property_id, user_id, month, year, total_rent, owner_share,
			amount_distributed, balance, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (property_id, user_id, month, year) DO UPDATE SET
			total_rent = excluded.total_rent,
			owner_share = excluded.owner_share,
			balance = excluded.owner_share - owner_settlements.amount_distributed,
			updated_at = excluded.updated_at`,
		settlement.ID,
		settlement.PropertyID,
		settlement.UserID,
		settlement.Month,
		settlement.Year,
		settlement.TotalRent,
		settlement.OwnerShare,
		settlement.AmountDistributed,
		settlement.Balance,
		settlement.CreatedAt,
		settlement.UpdatedAt,
	).Error
	if err != nil {
		return nil, err
	}

	var row domain.OwnerSettlement
	err = db.WithContext(ctx).
		Where("property_id = ? AND user_id = ? AND month = ? AND year = ?",
			settlement.PropertyID, settlement.UserID, settlement.Month, settlement.Year).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *store) FindSettlementsByPropertyID(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.OwnerSettlement, error) {
	var settlements []domain.OwnerSettlement
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("year DESC, month DESC, id ASC").
		Find(&settlements).Error
	return settlements, err
}

func (s *store) FindSettlementsByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.OwnerSettlement, error) {
	var settlements []domain.OwnerSettlement
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC, month DESC, id ASC").
		Find(&settlements).Error
	return settlements, err
}
