package agent

import (
	"github.com/agentspace/agentspace/internal/agent/repository"
	"github.com/agentspace/agentspace/internal/agent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("agent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
