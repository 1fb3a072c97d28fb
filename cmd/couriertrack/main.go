package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/clock"
	"github.com/fleetops/couriertrack/internal/config"
	"github.com/fleetops/couriertrack/internal/courier"
	"github.com/fleetops/couriertrack/internal/distance"
	"github.com/fleetops/couriertrack/internal/entrance"
	"github.com/fleetops/couriertrack/internal/location"
	"github.com/fleetops/couriertrack/internal/migration"
	"github.com/fleetops/couriertrack/internal/observability"
	"github.com/fleetops/couriertrack/internal/server"
	"github.com/fleetops/couriertrack/internal/store"
	"github.com/fleetops/couriertrack/pkg/db"
	"github.com/fleetops/couriertrack/pkg/redisclient"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		redisclient.Module,
		migration.Module,

		// Functional domains
		courier.Module,
		store.Module,
		distance.Module,
		entrance.Module,
		location.Module,

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
