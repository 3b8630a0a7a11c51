package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spotcircle/internal/domain"
	"spotcircle/internal/service"
)

type createSpotRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" binding:"min=-180,max=180"`
	Address      string  `json:"address"`
	PrivacyLevel string  `json:"privacy_level" binding:"required"`
}

type updateSpotRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Address      *string  `json:"address"`
	PrivacyLevel *string  `json:"privacy_level"`
}

func (h *Handler) createSpot(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot, err := h.spots.Create(c.Request.Context(), callerID(c), service.CreateSpotInput{
		Name:         req.Name,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		PrivacyLevel: domain.PrivacyLevel(req.PrivacyLevel),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.spotResponse(c, *spot, nil))
}

func (h *Handler) listSpots(c *gin.Context) {
	spots, err := h.spots.List(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]SpotResponse, len(spots))
	for i := range spots {
		resp[i] = h.spotResponse(c, spots[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) nearbySpots(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng"})
		return
	}
	radius := 10.0
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius"})
			return
		}
	}

	nearby, err := h.spots.Nearby(c.Request.Context(), callerID(c), lat, lng, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]SpotResponse, len(nearby))
	for i := range nearby {
		dist := nearby[i].Distance
		resp[i] = h.spotResponse(c, nearby[i].Spot, &dist)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getSpot(c *gin.Context) {
	spot, err := h.spots.Get(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.spotResponse(c, *spot, nil))
}

func (h *Handler) updateSpot(c *gin.Context) {
	var req updateSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateSpotInput{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
	}
	if req.PrivacyLevel != nil {
		level := domain.PrivacyLevel(*req.PrivacyLevel)
		input.PrivacyLevel = &level
	}

	spot, err := h.spots.Update(c.Request.Context(), c.Param("id"), callerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.spotResponse(c, *spot, nil))
}

func (h *Handler) deleteSpot(c *gin.Context) {
	if err := h.spots.Delete(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) uploadSpotPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	spot, err := h.spots.UploadPhoto(
		c.Request.Context(),
		c.Param("id"),
		callerID(c),
		file.Filename,
		file.Header.Get("Content-Type"),
		src,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.spotResponse(c, *spot, nil))
}

func (h *Handler) spotStats(c *gin.Context) {
	stats, err := h.spots.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_spots":        stats.TotalSpots,
		"public_spots":       stats.PublicSpots,
		"private_spots":      stats.PrivateSpots,
		"friends_only_spots": stats.FriendsOnlySpots,
	})
}

func (h *Handler) spotResponse(c *gin.Context, spot domain.Spot, distance *float64) SpotResponse {
	photoURL, err := h.spots.PhotoURL(c.Request.Context(), &spot)
	if err != nil {
		photoURL = ""
	}
	return spotToResponse(spot, photoURL, distance)
}
