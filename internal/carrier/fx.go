package carrier

import (
	"github.com/agentspace/agentspace/internal/carrier/repository"
	"github.com/agentspace/agentspace/internal/carrier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("carrier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
