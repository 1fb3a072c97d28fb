package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Detection describes a logged store entrance.
type Detection struct {
	StoreID      snowflake.ID
	StoreName    string
	EntranceTime time.Time
}

// Service evaluates a position sample against the store geofences and logs
// an entrance when the courier is inside a radius and outside the cooldown
// window for that store.
type Service interface {
	// CheckEntrance returns the detection for the first matching store in
	// load order, or nil when no entrance was logged.
	CheckEntrance(ctx context.Context, courierID snowflake.ID, lat, lon float64, at time.Time) (*Detection, error)

	// ListByCourier returns the courier's logged entrances, newest first.
	ListByCourier(ctx context.Context, courierID string) ([]StoreEntrance, error)
}
