package distance

import (
	"github.com/fleetops/couriertrack/internal/config"
	"github.com/fleetops/couriertrack/internal/distance/cache"
	"github.com/fleetops/couriertrack/internal/distance/repository"
	"github.com/fleetops/couriertrack/internal/distance/service"
	"github.com/fleetops/couriertrack/internal/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("distance.service",
	fx.Provide(repository.Provide),
	fx.Provide(cache.New),
	fx.Provide(newCalculator),
	fx.Provide(service.New),
)

// newCalculator fixes the distance strategy for the lifetime of the process.
// The tracking config file is hot-reloaded for radii and TTLs, but switching
// algorithms mid-flight would mix models inside one aggregate, so the choice
// is read once here.
func newCalculator(holder *config.TrackingConfigHolder, log *zap.Logger) geo.Calculator {
	calc := geo.FromAlgorithm(holder.Current().Algorithm)
	log.Info("distance algorithm selected", zap.String("algorithm", calc.AlgorithmName()))
	return calc
}
