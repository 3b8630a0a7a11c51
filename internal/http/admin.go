package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) createInvite(c *gin.Context) {
	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.admin.CreateInvite(c.Request.Context(), callerID(c), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inviteToResponse(*invite, h.inviteLink(invite.Code)))
}

func (h *Handler) inviteLink(code string) string {
	if h.frontendURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/register?invite=%s", h.frontendURL, code)
}

func (h *Handler) listInvites(c *gin.Context) {
	invites, err := h.admin.ListInvites(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]InviteResponse, len(invites))
	for i := range invites {
		resp[i] = inviteToResponse(invites[i], "")
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) allUsers(c *gin.Context) {
	users, err := h.admin.AllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) pendingUsers(c *gin.Context) {
	users, err := h.admin.PendingUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) approveUser(c *gin.Context) {
	user, err := h.admin.ApproveUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) rejectUser(c *gin.Context) {
	if err := h.admin.RejectUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.admin.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsToResponse(stats))
}
