package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
)

type createCourierRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) CreateCourier(c *gin.Context) {
	var req createCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.courierSvc.Create(c.Request.Context(), courierdomain.CreateCourierRequest{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetCourierByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.courierSvc.GetByID(c.Request.Context(), courierdomain.GetCourierRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTotalTravelDistance(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.distanceSvc.GetTotalTravelDistance(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCourierEntrances(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.entranceSvc.ListByCourier(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
