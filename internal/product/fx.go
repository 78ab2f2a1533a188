package product

import (
	"github.com/agentspace/agentspace/internal/product/repository"
	"github.com/agentspace/agentspace/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
