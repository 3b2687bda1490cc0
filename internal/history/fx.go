package history

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/history/service"
)

var Module = fx.Module("history.service",
	fx.Provide(service.NewService),
)
