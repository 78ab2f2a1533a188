package main

import (
	"github.com/agentspace/agentspace/internal/config"
	"github.com/agentspace/agentspace/internal/migration"
	"github.com/agentspace/agentspace/internal/observability"
	"github.com/agentspace/agentspace/internal/server"
	"github.com/agentspace/agentspace/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}
