package main

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/migration"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability"
	"github.com/Falloukarim/colis-sn-sub000/internal/server"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and the domain modules behind it
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
