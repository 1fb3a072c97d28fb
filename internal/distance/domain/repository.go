package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, courierID snowflake.ID) (*CourierDistance, error)

	// UpsertAdd atomically creates the row at deltaKm if absent, else adds
	// deltaKm to the existing total, and returns the resulting total.
	// Concurrent calls for the same courier must not lose an increment.
	UpsertAdd(ctx context.Context, db *gorm.DB, id, courierID snowflake.ID, deltaKm float64, now time.Time) (float64, error)

	// SetAbsolute overwrites the total. Cold-path recomputation only.
	SetAbsolute(ctx context.Context, db *gorm.DB, id, courierID snowflake.ID, totalKm float64, now time.Time) error
}
