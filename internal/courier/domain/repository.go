package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, courier *Courier) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Courier, error)
	ExistsByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
