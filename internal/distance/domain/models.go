package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CourierDistance is the durable per-courier running total. One row per
// courier; the invariant is that total_distance equals the sum of pairwise
// segment distances over the courier's full location history.
type CourierDistance struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CourierID     snowflake.ID `gorm:"not null;uniqueIndex" json:"courier_id"`
	TotalDistance float64      `gorm:"not null;default:0" json:"total_distance"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
