package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type DistanceResponse struct {
	Distance float64 `json:"distance"`
	Unit     string  `json:"unit"`
}

func Kilometers(distance float64) DistanceResponse {
	return DistanceResponse{Distance: distance, Unit: "km"}
}

type Service interface {
	// GetTotalTravelDistance serves the read path: cache first, then the
	// durable aggregate, recomputing from the location log when no
	// aggregate row exists yet.
	GetTotalTravelDistance(ctx context.Context, courierID string) (DistanceResponse, error)

	// ApplyNewLocation recomputes the incremental delta for the sample
	// just inserted in tx and folds it into the aggregate within the same
	// transaction. Returns the new total.
	ApplyNewLocation(ctx context.Context, tx *gorm.DB, courierID snowflake.ID) (float64, error)

	// PublishTotal pushes a committed total to the cache, best-effort.
	PublishTotal(ctx context.Context, courierID snowflake.ID, totalKm float64)

	// RecomputeTotalDistance rebuilds the aggregate from the full ordered
	// location history. Repair path.
	RecomputeTotalDistance(ctx context.Context, courierID string) (DistanceResponse, error)
}
