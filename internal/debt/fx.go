package debt

import (
	"github.com/agentspace/agentspace/internal/debt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debt.service",
	fx.Provide(service.New),
)
