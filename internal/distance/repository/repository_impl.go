package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/distance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, courierID snowflake.ID) (*domain.CourierDistance, error) {
	var record domain.CourierDistance
	err := db.WithContext(ctx).Raw(
		`SELECT id, courier_id, total_distance, updated_at
		 FROM courier_distances WHERE courier_id = ?`,
		courierID,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

// The single-statement upsert keeps concurrent increments for the same
// courier from losing updates: the addition happens inside the database,
// serialized on the courier_id unique index.
func (r *repo) UpsertAdd(ctx context.Context, db *gorm.DB, id, courierID snowflake.ID, deltaKm float64, now time.Time) (float64, error) {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO courier_distances (id, courier_id, total_distance, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (courier_id) DO UPDATE
		 SET total_distance = courier_distances.total_distance + excluded.total_distance,
		     updated_at = excluded.updated_at`,
		id,
		courierID,
		deltaKm,
		now,
	).Error
	if err != nil {
		return 0, fmt.Errorf("upsert courier distance: %w", err)
	}

	var total float64
	err = db.WithContext(ctx).Raw(
		`SELECT total_distance FROM courier_distances WHERE courier_id = ?`,
		courierID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) SetAbsolute(ctx context.Context, db *gorm.DB, id, courierID snowflake.ID, totalKm float64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO courier_distances (id, courier_id, total_distance, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (courier_id) DO UPDATE
		 SET total_distance = excluded.total_distance,
		     updated_at = excluded.updated_at`,
		id,
		courierID,
		totalKm,
		now,
	).Error
}
