package repository

import (
	"context"

	"github.com/fleetops/couriertrack/internal/store/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAll(ctx context.Context, db *gorm.DB, stores []domain.Store) error {
	if len(stores) == 0 {
		return nil
	}
	for i := range stores {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO stores (id, name, latitude, longitude) VALUES (?, ?, ?, ?)`,
			stores[i].ID,
			stores[i].Name,
			stores[i].Latitude,
			stores[i].Longitude,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	var stores []domain.Store
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, latitude, longitude FROM stores ORDER BY id`,
	).Scan(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM stores`).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
