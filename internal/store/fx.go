package store

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/config"
	"github.com/fleetops/couriertrack/internal/store/domain"
	"github.com/fleetops/couriertrack/internal/store/loader"
	"github.com/fleetops/couriertrack/internal/store/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("store",
	fx.Provide(repository.Provide),
	fx.Provide(newLoader),
	fx.Invoke(runLoader),
)

func newLoader(db *gorm.DB, log *zap.Logger, genID *snowflake.Node, repo domain.Repository, cfg config.Config) *loader.Loader {
	return loader.New(db, log, genID, repo, cfg.StoreDataFile)
}

func runLoader(lc fx.Lifecycle, l *loader.Loader) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return l.Run(ctx)
		},
	})
}
