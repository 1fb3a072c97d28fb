package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Location is one reported position sample. Rows are append-only and never
// mutated; timestamp is caller-supplied, not the server clock.
type Location struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CourierID snowflake.ID `gorm:"not null;index:idx_locations_courier_timestamp,priority:1" json:"courier_id"`
	Latitude  float64      `gorm:"not null" json:"latitude"`
	Longitude float64      `gorm:"not null" json:"longitude"`
	Timestamp time.Time    `gorm:"column:timestamp;not null;index:idx_locations_courier_timestamp,priority:2" json:"timestamp"`
}
