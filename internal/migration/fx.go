package migration

import (
	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	"github.com/agentspace/agentspace/internal/config"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"github.com/agentspace/agentspace/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; gorm derives the
			// same schema from the models.
			if err := conn.AutoMigrate(
				&agencydomain.Agency{},
				&positiondomain.Position{},
				&agentdomain.Agent{},
				&carrierdomain.Carrier{},
				&carrierdomain.StatusMapping{},
				&productdomain.Product{},
				&commissiondomain.CommissionRate{},
				&dealdomain.Deal{},
				&ledgerdomain.HierarchySnapshot{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoAgency(conn)
		}
		return nil
	}),
)
