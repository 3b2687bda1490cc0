package invoice

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewService),
)
