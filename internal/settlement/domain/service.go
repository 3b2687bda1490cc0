package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
)

type CalculateRequest struct {
	PropertyID snowflake.ID
	Month      int
	Year       int
}

// Service distributes collected rent for a period to a property's approved
// owners by ownership percentage.
type Service interface {
	Calculate(ctx context.Context, req CalculateRequest) ([]ledgerdomain.OwnerSettlement, error)
	ListByProperty(ctx context.Context, propertyID snowflake.ID) ([]ledgerdomain.OwnerSettlement, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]ledgerdomain.OwnerSettlement, error)
}

var (
	ErrPropertyNotFound = errors.New("property_not_found")
	ErrInvalidPeriod    = errors.New("invalid_period")
)
