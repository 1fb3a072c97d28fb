package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Store struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Latitude  float64      `gorm:"not null" json:"latitude"`
	Longitude float64      `gorm:"not null" json:"longitude"`
}

type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, stores []Store) error
	FindAll(ctx context.Context, db *gorm.DB) ([]Store, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

var ErrNotFound = errors.New("store_not_found")
