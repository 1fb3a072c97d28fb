package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	locationdomain "github.com/fleetops/couriertrack/internal/location/domain"
)

type updateLocationRequest struct {
	CourierID string  `json:"courier_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

func (s *Server) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	timestamp, err := parseTimestamp(req.Timestamp)
	if err != nil {
		AbortWithError(c, newValidationError("timestamp", "invalid_timestamp", "invalid timestamp"))
		return
	}

	resp, err := s.locationSvc.UpdateLocation(c.Request.Context(), locationdomain.UpdateLocationRequest{
		CourierID: strings.TrimSpace(req.CourierID),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Timestamp: timestamp,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// parseTimestamp accepts RFC 3339 with or without sub-second precision. An
// empty value defaults to the server clock.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
