package handlers

import (
	"net/http"
	"strconv"
	"time"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/logger"
	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
)

type authRequest struct {
	DiscordID string `json:"discord_id" binding:"required"`
	Username  string `json:"username"`
}

// AuthDiscord upserts the member by Discord id and issues a bearer token.
// When the bot is connected the username is resolved from the guild, so the
// client cannot impersonate someone else's display name.
func (h *Handler) AuthDiscord(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discord_id required"})
		return
	}

	username := req.Username
	if h.notifier != nil {
		if resolved, err := h.notifier.ResolveUsername(req.DiscordID); err == nil {
			username = resolved
		}
	}
	if username == "" {
		username = "hamster-" + req.DiscordID
	}

	member := &domain.Member{DiscordID: req.DiscordID, Username: username}
	if err := h.memberRepo.Create(c.Request.Context(), member); err != nil {
		logger.Error("member upsert failed", "discord_id", req.DiscordID, "error", err)
		respondError(c, err)
		return
	}

	token, err := service.IssueToken(member.ID, 24*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "member": member})
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	member, err := h.memberRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if member == nil {
		respondError(c, service.ErrMemberNotFound)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) GetBalance(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	balance, err := h.currency.GetBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hamster_coins": balance})
}

func (h *Handler) GetHistory(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.currency.GetTransactionHistory(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

func (h *Handler) ClaimReward(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	balance, err := h.currency.ClaimReward(c.Request.Context(), id, h.cfg.RewardAmount, h.cfg.RewardCooldown)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hamster_coins": balance, "reward": h.cfg.RewardAmount})
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.memberRepo.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

type buyTicketsRequest struct {
	Count int64 `json:"count" binding:"required"`
}

func (h *Handler) BuyTickets(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req buyTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count required"})
		return
	}

	coins, tickets, err := h.currency.BuyTickets(c.Request.Context(), id, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hamster_coins": coins, "gacha_tickets": tickets})
}

type adminAdjustRequest struct {
	MemberID int64  `json:"member_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
	Reason   string `json:"reason"`
}

// AdminAdjust credits or debits a member's coins out of band
func (h *Handler) AdminAdjust(c *gin.Context) {
	var req adminAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id and amount required"})
		return
	}

	meta := map[string]interface{}{"reason": req.Reason}
	var balance int64
	var err error
	if req.Amount >= 0 {
		balance, err = h.currency.Credit(c.Request.Context(), req.MemberID, req.Amount, domain.TxTypeAdminAdjust, meta)
	} else {
		balance, err = h.currency.Debit(c.Request.Context(), req.MemberID, -req.Amount, domain.TxTypeAdminAdjust, meta)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": req.MemberID, "hamster_coins": balance})
}
