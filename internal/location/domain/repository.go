package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, location *Location) error

	// FindMostRecentTwo returns up to two samples ordered newest-first by
	// timestamp, ties broken by id (snowflake ids preserve insertion order).
	FindMostRecentTwo(ctx context.Context, db *gorm.DB, courierID snowflake.ID) ([]Location, error)

	// ForEachOrderedByTimestamp streams the courier's full history in
	// ascending timestamp order in fixed-size batches. Cold path only.
	ForEachOrderedByTimestamp(ctx context.Context, db *gorm.DB, courierID snowflake.ID, fn func(Location) error) error
}
