package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spotcircle/internal/domain"
	"spotcircle/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	admin       service.AdminService
	spots       service.SpotService
	voting      service.VotingService
	jwtSecret   string
	frontendURL string
}

func NewHandler(users service.UserService, admin service.AdminService, spots service.SpotService, voting service.VotingService, jwtSecret, frontendURL string) *Handler {
	return &Handler{
		users:       users,
		admin:       admin,
		spots:       spots,
		voting:      voting,
		jwtSecret:   jwtSecret,
		frontendURL: frontendURL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.GET("/profile", h.requireAuth(), h.profile)
		}

		spots := api.Group("/spots")
		{
			spots.GET("", h.optionalAuth(), h.listSpots)
			spots.GET("/nearby", h.optionalAuth(), h.nearbySpots)
			spots.GET("/stats", h.spotStats)
			spots.GET("/:id", h.optionalAuth(), h.getSpot)
			spots.POST("", h.requireAuth(), h.createSpot)
			spots.PATCH("/:id", h.requireAuth(), h.updateSpot)
			spots.DELETE("/:id", h.requireAuth(), h.deleteSpot)
			spots.POST("/:id/photo", h.requireAuth(), h.uploadSpotPhoto)
		}

		admin := api.Group("/admin", h.requireAuth(), h.requireRole(domain.RoleAdmin))
		{
			admin.POST("/invites", h.createInvite)
			admin.GET("/invites", h.listInvites)
			admin.GET("/users", h.allUsers)
			admin.GET("/users/pending", h.pendingUsers)
			admin.PATCH("/users/:id/approve", h.approveUser)
			admin.DELETE("/users/:id", h.rejectUser)
			admin.GET("/stats", h.adminStats)
		}

		voting := api.Group("/voting", h.requireAuth(), h.requireRole(domain.RoleSuperAdmin))
		{
			voting.POST("", h.createVote)
			voting.POST("/:id/cast", h.castVote)
			voting.GET("/active", h.activeVotes)
			voting.GET("/history", h.voteHistory)
			voting.GET("/:id", h.getVote)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrPendingApproval):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
