package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/courier/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, courier *domain.Courier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO couriers (id, name, email, phone_number, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		courier.ID,
		courier.Name,
		courier.Email,
		courier.PhoneNumber,
		courier.Metadata,
		courier.CreatedAt,
		courier.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Courier, error) {
	var courier domain.Courier
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, phone_number, metadata, created_at, updated_at
		 FROM couriers WHERE id = ?`,
		id,
	).Scan(&courier).Error
	if err != nil {
		return nil, err
	}
	if courier.ID == 0 {
		return nil, nil
	}
	return &courier, nil
}

func (r *repo) ExistsByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM couriers WHERE id = ?`,
		id,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
