package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type UpdateLocationRequest struct {
	CourierID string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

type UpdateLocationResponse struct {
	LocationID snowflake.ID `json:"location_id"`
	CourierID  snowflake.ID `json:"courier_id"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	Timestamp  time.Time    `json:"timestamp"`
	Message    string       `json:"message"`
}

// Service is the tracking pipeline entry point: it persists the sample,
// maintains the running distance total, and evaluates store entrances.
type Service interface {
	UpdateLocation(context.Context, UpdateLocationRequest) (UpdateLocationResponse, error)
}

var (
	ErrInvalidCoordinate = errors.New("invalid_coordinate")
	ErrInvalidTimestamp  = errors.New("invalid_timestamp")
)
