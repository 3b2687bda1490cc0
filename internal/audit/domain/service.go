package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// RecordInput describes one audit entry. Before and After snapshots stay
// structured until the storage boundary serializes them.
type RecordInput struct {
	UserID     *snowflake.ID
	Action     string
	EntityName string
	RecordID   *string
	Before     map[string]any
	After      map[string]any
	Metadata   map[string]any
}

// Service appends audit entries. Record never fails on input shape, only on
// storage unavailability.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

var (
	ErrMissingAction = errors.New("missing_action")
	ErrMissingEntity = errors.New("missing_entity")
)
