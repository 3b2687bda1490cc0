package audit

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/audit/repository"
	"github.com/mabdulrehman08/propmanager/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
