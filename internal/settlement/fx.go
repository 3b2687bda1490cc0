package settlement

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/settlement/service"
)

var Module = fx.Module("settlement.service",
	fx.Provide(service.NewService),
)
