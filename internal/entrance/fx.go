package entrance

import (
	"github.com/fleetops/couriertrack/internal/entrance/repository"
	"github.com/fleetops/couriertrack/internal/entrance/service"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("entrance.service",
	fx.Provide(repository.Provide),
	fx.Provide(newLocker),
	fx.Provide(service.New),
)

func newLocker(client *redis.Client) *service.Locker {
	return service.NewLocker(client)
}
