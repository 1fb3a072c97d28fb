package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entrance *StoreEntrance) error

	// ExistsSince reports whether the courier already has an entrance logged
	// for the store strictly after the given instant.
	ExistsSince(ctx context.Context, db *gorm.DB, courierID, storeID snowflake.ID, since time.Time) (bool, error)

	FindByCourier(ctx context.Context, db *gorm.DB, courierID snowflake.ID) ([]StoreEntrance, error)
}
