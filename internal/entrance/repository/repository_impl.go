package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/entrance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entrance *domain.StoreEntrance) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO store_entrances (id, courier_id, store_id, entrance_time)
		 VALUES (?, ?, ?, ?)`,
		entrance.ID,
		entrance.CourierID,
		entrance.StoreID,
		entrance.EntranceTime,
	).Error
}

func (r *repo) ExistsSince(ctx context.Context, db *gorm.DB, courierID, storeID snowflake.ID, since time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM store_entrances
		 WHERE courier_id = ? AND store_id = ? AND entrance_time > ?`,
		courierID,
		storeID,
		since,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindByCourier(ctx context.Context, db *gorm.DB, courierID snowflake.ID) ([]domain.StoreEntrance, error) {
	var entrances []domain.StoreEntrance
	err := db.WithContext(ctx).Raw(
		`SELECT id, courier_id, store_id, entrance_time
		 FROM store_entrances WHERE courier_id = ?
		 ORDER BY entrance_time DESC, id DESC`,
		courierID,
	).Scan(&entrances).Error
	if err != nil {
		return nil, err
	}
	return entrances, nil
}
