package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mabdulrehman08/propmanager/internal/audit/domain"
	"github.com/mabdulrehman08/propmanager/internal/auditcontext"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, input domain.RecordInput) error {
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return domain.ErrMissingAction
	}
	entity := strings.TrimSpace(input.EntityName)
	if entity == "" {
		return domain.ErrMissingEntity
	}

	metadata := datatypes.JSONMap{}
	for key, value := range input.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		metadata[key] = value
	}
	if input.Before != nil {
		metadata["before"] = input.Before
	}
	if input.After != nil {
		metadata["after"] = input.After
	}
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		metadata["request_id"] = requestID
	}

	userID := input.UserID
	if userID == nil {
		userID = auditcontext.UserIDFromContext(ctx)
	}

	entry := &domain.AuditLog{
		ID:         s.genID.Generate(),
		UserID:     userID,
		Action:     action,
		EntityName: entity,
		RecordID:   input.RecordID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Error("audit insert failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
