package location

import (
	"github.com/fleetops/couriertrack/internal/location/repository"
	"github.com/fleetops/couriertrack/internal/location/service"
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
