package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

// ReconstructRequest back-computes rent for a unit from its current rent and
// a yearly escalation rate. StartYear and StartMonth of zero fall back to the
// configured defaults.
type ReconstructRequest struct {
	UnitID                snowflake.ID
	CurrentRent           decimal.Decimal
	YearlyIncreasePercent decimal.Decimal
	StartYear             int
	StartMonth            int
}

// YearlyRent is the rent applicable during one calendar year, rounded to the
// nearest whole currency unit.
type YearlyRent struct {
	Year int             `json:"year"`
	Rent decimal.Decimal `json:"rent"`
}

type ReconstructResponse struct {
	GeneratedCount int                        `json:"generated_count"`
	YearlyRents    []YearlyRent               `json:"yearly_rents"`
	Invoices       []ledgerdomain.RentInvoice `json:"invoices"`
}

// Service rebuilds a unit's historical rent invoices.
type Service interface {
	Reconstruct(ctx context.Context, req ReconstructRequest) (ReconstructResponse, error)
}

var (
	ErrUnitNotFound    = errors.New("unit_not_found")
	ErrInvalidRent     = errors.New("invalid_current_rent")
	ErrInvalidIncrease = errors.New("invalid_increase_percent")
	ErrInvalidStart    = errors.New("invalid_start_period")
)
