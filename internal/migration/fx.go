package migration

import (
	"github.com/fleetops/couriertrack/internal/config"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	distancedomain "github.com/fleetops/couriertrack/internal/distance/domain"
	entrancedomain "github.com/fleetops/couriertrack/internal/entrance/domain"
	locationdomain "github.com/fleetops/couriertrack/internal/location/domain"
	storedomain "github.com/fleetops/couriertrack/internal/store/domain"
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
			return RunMigrations(sqlDB)
		}

		// sqlite and mysql run from the model definitions directly.
		return conn.AutoMigrate(
			&courierdomain.Courier{},
			&locationdomain.Location{},
			&distancedomain.CourierDistance{},
			&storedomain.Store{},
			&entrancedomain.StoreEntrance{},
		)
	}),
)
