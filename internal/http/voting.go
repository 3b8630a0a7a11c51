package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spotcircle/internal/domain"
)

type createVoteRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Reason       string `json:"reason"`
}

type castVoteRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Comment  string `json:"comment"`
}

func (h *Handler) createVote(c *gin.Context) {
	var req createVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voting.CreateVote(c.Request.Context(), callerID(c), req.TargetUserID, domain.VoteType(req.Type), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voteToResponse(vote))
}

func (h *Handler) castVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voting.CastVote(c.Request.Context(), c.Param("id"), callerID(c), domain.VoteDecision(req.Decision), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voteToResponse(vote))
}

func (h *Handler) activeVotes(c *gin.Context) {
	votes, err := h.voting.GetActiveVotes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]VoteResponse, len(votes))
	for i := range votes {
		resp[i] = voteToResponse(&votes[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) voteHistory(c *gin.Context) {
	votes, err := h.voting.GetVoteHistory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]VoteResponse, len(votes))
	for i := range votes {
		resp[i] = voteToResponse(&votes[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getVote(c *gin.Context) {
	vote, err := h.voting.GetVoteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voteToResponse(vote))
}
