package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/config"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	"github.com/fleetops/couriertrack/internal/entrance/domain"
	"github.com/fleetops/couriertrack/internal/geo"
	"github.com/fleetops/couriertrack/internal/observability/metrics"
	storedomain "github.com/fleetops/couriertrack/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	lockKeyFormat = "courier:entrance:lock:%s:%s"

	// Upper bound on one check+insert round trip, not on the cooldown. The
	// lock expires on its own if release fails.
	lockTTL = 5 * time.Second
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	StoreRepo   storedomain.Repository
	CourierRepo courierdomain.Repository
	Calc        geo.Calculator
	Tracking    *config.TrackingConfigHolder
	Locker      *Locker          `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	storeRepo   storedomain.Repository
	courierRepo courierdomain.Repository
	calc        geo.Calculator
	tracking    *config.TrackingConfigHolder
	locker      *Locker
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("entrance.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		storeRepo:   p.StoreRepo,
		courierRepo: p.CourierRepo,
		calc:        p.Calc,
		tracking:    p.Tracking,
		locker:      p.Locker,
		metrics:     p.Metrics,
	}
}

func (s *Service) CheckEntrance(ctx context.Context, courierID snowflake.ID, lat, lon float64, at time.Time) (*domain.Detection, error) {
	cfg := s.tracking.Current()
	sample := geo.Coordinate{Lat: lat, Lon: lon}

	stores, err := s.storeRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	for _, store := range stores {
		meters := geo.DistanceMeters(s.calc, sample, geo.Coordinate{Lat: store.Latitude, Lon: store.Longitude})
		if meters > float64(cfg.EntranceRadiusMeters) {
			continue
		}

		logged, err := s.logOnce(ctx, courierID, store, at, cfg.EntranceCooldown)
		if err != nil {
			return nil, err
		}
		if !logged {
			// Inside the radius but still in cooldown for this store; an
			// overlapping neighbor may still be eligible.
			continue
		}

		s.metrics.RecordStoreEntrance(ctx, store.Name)
		s.log.Info("store entrance detected",
			zap.String("courier_id", courierID.String()),
			zap.String("store", store.Name),
			zap.Float64("distance_m", meters),
		)
		return &domain.Detection{
			StoreID:      store.ID,
			StoreName:    store.Name,
			EntranceTime: at,
		}, nil
	}

	return nil, nil
}

func (s *Service) ListByCourier(ctx context.Context, courierID string) ([]domain.StoreEntrance, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(courierID))
	if err != nil || id == 0 {
		return nil, courierdomain.ErrInvalidID
	}

	exists, err := s.courierRepo.ExistsByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, courierdomain.ErrNotFound
	}

	return s.repo.FindByCourier(ctx, s.db, id)
}

// logOnce inserts an entrance unless one already exists inside the cooldown
// window. The cooldown is defined on sample timestamps, so the database check
// decides the outcome; the redis lock only serializes concurrent check+insert
// sections for the same courier and store and is released once the decision is
// made. A held or unavailable lock falls through to the database check.
func (s *Service) logOnce(ctx context.Context, courierID snowflake.ID, store storedomain.Store, at time.Time, cooldown time.Duration) (bool, error) {
	key := fmt.Sprintf(lockKeyFormat, courierID.String(), store.ID.String())

	token, acquired, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil && s.locker != nil {
		s.log.Warn("entrance lock unavailable, falling back to database check", zap.Error(err))
	}
	if acquired {
		defer func() {
			if releaseErr := s.locker.Release(ctx, key, token); releaseErr != nil {
				s.log.Warn("entrance lock release failed", zap.Error(releaseErr))
			}
		}()
	}

	exists, err := s.repo.ExistsSince(ctx, s.db, courierID, store.ID, at.Add(-cooldown))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	entrance := domain.StoreEntrance{
		ID:           s.genID.Generate(),
		CourierID:    courierID,
		StoreID:      store.ID,
		EntranceTime: at,
	}
	if err := s.repo.Insert(ctx, s.db, &entrance); err != nil {
		return false, err
	}
	return true, nil
}
