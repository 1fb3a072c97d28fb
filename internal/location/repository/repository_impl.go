package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/location/domain"
	"gorm.io/gorm"
)

const historyBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, location *domain.Location) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO locations (id, courier_id, latitude, longitude, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		location.ID,
		location.CourierID,
		location.Latitude,
		location.Longitude,
		location.Timestamp,
	).Error
}

func (r *repo) FindMostRecentTwo(ctx context.Context, db *gorm.DB, courierID snowflake.ID) ([]domain.Location, error) {
	var locations []domain.Location
	err := db.WithContext(ctx).Raw(
		`SELECT id, courier_id, latitude, longitude, timestamp
		 FROM locations
		 WHERE courier_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT 2`,
		courierID,
	).Scan(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repo) ForEachOrderedByTimestamp(ctx context.Context, db *gorm.DB, courierID snowflake.ID, fn func(domain.Location) error) error {
	offset := 0
	for {
		var batch []domain.Location
		err := db.WithContext(ctx).Raw(
			`SELECT id, courier_id, latitude, longitude, timestamp
			 FROM locations
			 WHERE courier_id = ?
			 ORDER BY timestamp ASC, id ASC
			 LIMIT ? OFFSET ?`,
			courierID,
			historyBatchSize,
			offset,
		).Scan(&batch).Error
		if err != nil {
			return err
		}
		for i := range batch {
			if err := fn(batch[i]); err != nil {
				return err
			}
		}
		if len(batch) < historyBatchSize {
			return nil
		}
		offset += historyBatchSize
	}
}
