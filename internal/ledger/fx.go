package ledger

import (
	"go.uber.org/fx"

	"github.com/mabdulrehman08/propmanager/internal/ledger/repository"
)

var Module = fx.Module("ledger.store",
	fx.Provide(repository.Provide),
)
