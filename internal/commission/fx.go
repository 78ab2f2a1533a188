package commission

import (
	"github.com/agentspace/agentspace/internal/commission/repository"
	"github.com/agentspace/agentspace/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
