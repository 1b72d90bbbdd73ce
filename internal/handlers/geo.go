package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"amora-service/internal/geo"
	"amora-service/internal/middleware"
	"amora-service/internal/repositories"
)

// GeoHandler manages location updates and proximity queries.
type GeoHandler struct {
	locations repositories.LocationRepository
}

// NewGeoHandler builds a GeoHandler.
func NewGeoHandler(locations repositories.LocationRepository) *GeoHandler {
	return &GeoHandler{locations: locations}
}

// UpdateLocation overwrites the caller's last-known coordinates.
func (h *GeoHandler) UpdateLocation(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := geo.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.locations.UpdateLocation(c.Request.Context(), userID, *req.Latitude, *req.Longitude); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update location"})
		return
	}
	c.Status(http.StatusNoContent)
}

// FindNearby returns users within radius_km of the query point.
func (h *GeoHandler) FindNearby(c *gin.Context) {
	var req struct {
		Latitude  float64 `form:"latitude"`
		Longitude float64 `form:"longitude"`
		RadiusKM  float64 `form:"radius_km"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := geo.ValidateQuery(req.Latitude, req.Longitude, req.RadiusKM); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, err := h.locations.FindNearby(c.Request.Context(), req.Latitude, req.Longitude, req.RadiusKM)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query nearby users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
