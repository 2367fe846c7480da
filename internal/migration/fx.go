package migration

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/seed"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		if !cfg.Bootstrap.Enabled {
			return nil
		}
		if err := seed.EnsureOrgAndAdmin(conn, node, cfg.Bootstrap); err != nil {
			return err
		}
		log.Named("migrations").Info("bootstrap organization ready",
			zap.String("organization", cfg.Bootstrap.OrgName),
			zap.String("admin", cfg.Bootstrap.AdminEmail),
		)
		return nil
	}),
)
