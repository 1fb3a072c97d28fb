package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/clock"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	"github.com/fleetops/couriertrack/internal/distance/cache"
	"github.com/fleetops/couriertrack/internal/distance/domain"
	"github.com/fleetops/couriertrack/internal/geo"
	locationdomain "github.com/fleetops/couriertrack/internal/location/domain"
	"github.com/fleetops/couriertrack/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	LocationRepo locationdomain.Repository
	CourierRepo  courierdomain.Repository
	Cache        *cache.DistanceCache
	Calculator   geo.Calculator
	Clock        clock.Clock
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	locationRepo locationdomain.Repository
	courierRepo  courierdomain.Repository
	cache        *cache.DistanceCache
	calc         geo.Calculator
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("distance.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		locationRepo: p.LocationRepo,
		courierRepo:  p.CourierRepo,
		cache:        p.Cache,
		calc:         p.Calculator,
		clock:        p.Clock,
		metrics:      p.Metrics,
	}
}

func (s *Service) GetTotalTravelDistance(ctx context.Context, courierID string) (domain.DistanceResponse, error) {
	id, err := parseCourierID(courierID)
	if err != nil {
		return domain.DistanceResponse{}, err
	}

	exists, err := s.courierRepo.ExistsByID(ctx, s.db, id)
	if err != nil {
		return domain.DistanceResponse{}, err
	}
	if !exists {
		return domain.DistanceResponse{}, courierdomain.ErrNotFound
	}

	if total, ok := s.cache.Get(ctx, id); ok {
		s.metrics.RecordCacheHit(ctx)
		s.log.Debug("cache hit", zap.String("courier_id", id.String()), zap.Float64("total_km", total))
		return domain.Kilometers(total), nil
	}
	s.metrics.RecordCacheMiss(ctx, "absent")

	record, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return domain.DistanceResponse{}, err
	}
	if record != nil {
		s.cache.Set(ctx, id, record.TotalDistance)
		return domain.Kilometers(record.TotalDistance), nil
	}

	// No aggregate row yet: rebuild from the location log so the row exists
	// for subsequent incremental updates.
	total, err := s.recompute(ctx, id)
	if err != nil {
		return domain.DistanceResponse{}, err
	}
	return domain.Kilometers(total), nil
}

func (s *Service) ApplyNewLocation(ctx context.Context, tx *gorm.DB, courierID snowflake.ID) (float64, error) {
	recent, err := s.locationRepo.FindMostRecentTwo(ctx, tx, courierID)
	if err != nil {
		return 0, err
	}

	delta := 0.0
	if len(recent) >= 2 {
		// recent is newest-first: recent[1] is the previous sample.
		delta = s.calc.DistanceKm(
			geo.Coordinate{Lat: recent[1].Latitude, Lon: recent[1].Longitude},
			geo.Coordinate{Lat: recent[0].Latitude, Lon: recent[0].Longitude},
		)
	}

	total, err := s.repo.UpsertAdd(ctx, tx, s.genID.Generate(), courierID, delta, s.clock.Now())
	if err != nil {
		return 0, err
	}

	s.log.Debug("distance updated",
		zap.String("courier_id", courierID.String()),
		zap.Float64("delta_km", delta),
		zap.Float64("total_km", total),
	)
	return total, nil
}

func (s *Service) PublishTotal(ctx context.Context, courierID snowflake.ID, totalKm float64) {
	s.cache.Set(ctx, courierID, totalKm)
}

func (s *Service) RecomputeTotalDistance(ctx context.Context, courierID string) (domain.DistanceResponse, error) {
	id, err := parseCourierID(courierID)
	if err != nil {
		return domain.DistanceResponse{}, err
	}

	exists, err := s.courierRepo.ExistsByID(ctx, s.db, id)
	if err != nil {
		return domain.DistanceResponse{}, err
	}
	if !exists {
		return domain.DistanceResponse{}, courierdomain.ErrNotFound
	}

	total, err := s.recompute(ctx, id)
	if err != nil {
		return domain.DistanceResponse{}, err
	}
	return domain.Kilometers(total), nil
}

func (s *Service) recompute(ctx context.Context, courierID snowflake.ID) (float64, error) {
	total := 0.0
	var prev *locationdomain.Location

	err := s.locationRepo.ForEachOrderedByTimestamp(ctx, s.db, courierID, func(loc locationdomain.Location) error {
		if prev != nil {
			total += s.calc.DistanceKm(
				geo.Coordinate{Lat: prev.Latitude, Lon: prev.Longitude},
				geo.Coordinate{Lat: loc.Latitude, Lon: loc.Longitude},
			)
		}
		current := loc
		prev = &current
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.repo.SetAbsolute(ctx, s.db, s.genID.Generate(), courierID, total, s.clock.Now()); err != nil {
		return 0, err
	}
	s.cache.Set(ctx, courierID, total)

	s.log.Info("distance recomputed", zap.String("courier_id", courierID.String()), zap.Float64("total_km", total))
	return total, nil
}

func parseCourierID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, courierdomain.ErrInvalidID
	}
	return id, nil
}
