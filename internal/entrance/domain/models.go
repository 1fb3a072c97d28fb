package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StoreEntrance records one detected visit of a courier to a store.
type StoreEntrance struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	CourierID    snowflake.ID `gorm:"column:courier_id;index:idx_store_entrances_pair_time,priority:1" json:"courier_id"`
	StoreID      snowflake.ID `gorm:"column:store_id;index:idx_store_entrances_pair_time,priority:2" json:"store_id"`
	EntranceTime time.Time    `gorm:"column:entrance_time;index:idx_store_entrances_pair_time,priority:3" json:"entrance_time"`
}

func (StoreEntrance) TableName() string {
	return "store_entrances"
}
