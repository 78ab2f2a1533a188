package hierarchy

import (
	"github.com/agentspace/agentspace/internal/hierarchy/repository"
	"github.com/agentspace/agentspace/internal/hierarchy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("hierarchy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
