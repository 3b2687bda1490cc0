package dashboard

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/dashboard/service"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(service.NewService),
)
