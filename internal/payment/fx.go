package payment

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(service.NewService),
)
