package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	distancedomain "github.com/fleetops/couriertrack/internal/distance/domain"
	entrancedomain "github.com/fleetops/couriertrack/internal/entrance/domain"
	"github.com/fleetops/couriertrack/internal/geo"
	"github.com/fleetops/couriertrack/internal/location/domain"
	"github.com/fleetops/couriertrack/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	messageUpdated          = "Location updated successfully"
	messageEntranceDetected = "Location updated successfully. Store entrance detected at: "
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CourierRepo courierdomain.Repository
	Distance    distancedomain.Service
	Entrance    entrancedomain.Service
	Calc        geo.Calculator
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	courierRepo courierdomain.Repository
	distance    distancedomain.Service
	entrance    entrancedomain.Service
	calc        geo.Calculator
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("location.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		courierRepo: p.CourierRepo,
		distance:    p.Distance,
		entrance:    p.Entrance,
		calc:        p.Calc,
		metrics:     p.Metrics,
	}
}

func (s *Service) UpdateLocation(ctx context.Context, req domain.UpdateLocationRequest) (domain.UpdateLocationResponse, error) {
	courierID, err := snowflake.ParseString(strings.TrimSpace(req.CourierID))
	if err != nil || courierID == 0 {
		return domain.UpdateLocationResponse{}, courierdomain.ErrInvalidID
	}

	coord := geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
	if !coord.Valid() {
		return domain.UpdateLocationResponse{}, domain.ErrInvalidCoordinate
	}
	if req.Timestamp.IsZero() {
		return domain.UpdateLocationResponse{}, domain.ErrInvalidTimestamp
	}

	exists, err := s.courierRepo.ExistsByID(ctx, s.db, courierID)
	if err != nil {
		return domain.UpdateLocationResponse{}, err
	}
	if !exists {
		return domain.UpdateLocationResponse{}, courierdomain.ErrNotFound
	}

	location := domain.Location{
		ID:        s.genID.Generate(),
		CourierID: courierID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Timestamp: req.Timestamp.UTC(),
	}

	var totalKm float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &location); err != nil {
			return err
		}
		total, err := s.distance.ApplyNewLocation(ctx, tx, courierID)
		if err != nil {
			return err
		}
		totalKm = total
		return nil
	})
	if err != nil {
		return domain.UpdateLocationResponse{}, err
	}

	// Post-commit work is best effort. The sample and the distance total are
	// durable at this point; cache and entrance failures must not undo that.
	s.distance.PublishTotal(ctx, courierID, totalKm)
	s.metrics.RecordLocationUpdate(ctx, s.calc.AlgorithmName())

	message := messageUpdated
	detection, err := s.entrance.CheckEntrance(ctx, courierID, req.Latitude, req.Longitude, location.Timestamp)
	if err != nil {
		s.log.Error("entrance check failed",
			zap.String("courier_id", courierID.String()),
			zap.Error(err),
		)
	} else if detection != nil {
		message = messageEntranceDetected + detection.StoreName
	}

	s.log.Debug("location updated",
		zap.String("courier_id", courierID.String()),
		zap.Float64("total_km", totalKm),
		zap.Time("timestamp", location.Timestamp),
	)

	return domain.UpdateLocationResponse{
		LocationID: location.ID,
		CourierID:  courierID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Timestamp:  location.Timestamp,
		Message:    message,
	}, nil
}
