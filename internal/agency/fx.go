package agency

import (
	"github.com/agentspace/agentspace/internal/agency/repository"
	"github.com/agentspace/agentspace/internal/agency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("agency.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
