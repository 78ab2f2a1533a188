package deal

import (
	"github.com/agentspace/agentspace/internal/deal/repository"
	"github.com/agentspace/agentspace/internal/deal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
