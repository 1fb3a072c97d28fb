package courier

import (
	"github.com/fleetops/couriertrack/internal/courier/repository"
	"github.com/fleetops/couriertrack/internal/courier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("courier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
