package position

import (
	"github.com/agentspace/agentspace/internal/position/repository"
	"github.com/agentspace/agentspace/internal/position/service"
	"go.uber.org/fx"
)

var Module = fx.Module("position.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
