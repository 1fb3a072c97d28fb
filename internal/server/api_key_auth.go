package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyRequired authenticates requests with the shared static API key. When
// no key is configured the endpoints are open, which is the expected mode for
// local development.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.APIKey
		if expected == "" {
			c.Next()
			return
		}

		header := s.cfg.APIKeyHeader
		if strings.TrimSpace(header) == "" {
			header = "X-API-Key"
		}

		provided := strings.TrimSpace(c.GetHeader(header))
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}
