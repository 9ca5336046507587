package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hamsterhub/internal/domain"
	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetGachaItems(c *gin.Context) {
	items, err := h.gacha.ActiveItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) GetGachaPulls(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	pulls, err := h.gacha.RecentPulls(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pulls": pulls})
}

// GetAllGachaItems lists the whole catalog, inactive entries included (admin)
func (h *Handler) GetAllGachaItems(c *gin.Context) {
	items, err := h.gacha.AllItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type pullRequest struct {
	Method string `json:"method" binding:"required"`
}

func (h *Handler) GachaPull(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req pullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "method required: coins or tickets"})
		return
	}

	result, err := h.gacha.Pull(c.Request.Context(), id, domain.PullMethod(req.Method))
	if err != nil {
		// the client shows a top-up prompt with the amount still needed
		if errors.Is(err, service.ErrInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    err.Error(),
				"required": domain.PullCostCoins,
			})
			return
		}
		if errors.Is(err, service.ErrInsufficientTickets) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    err.Error(),
				"required": domain.PullCostTickets,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type gachaItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Rarity   string  `json:"rarity" binding:"required"`
	DropRate float64 `json:"drop_rate" binding:"required"`
	IsActive *bool   `json:"is_active"`
}

func (h *Handler) CreateGachaItem(c *gin.Context) {
	var req gachaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, rarity and drop_rate required"})
		return
	}

	item := &domain.GachaItem{
		Name:     req.Name,
		Rarity:   domain.Rarity(req.Rarity),
		DropRate: req.DropRate,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := h.gacha.CreateItem(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateGachaItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad item id"})
		return
	}

	var req gachaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, rarity and drop_rate required"})
		return
	}

	item := &domain.GachaItem{
		ID:       itemID,
		Name:     req.Name,
		Rarity:   domain.Rarity(req.Rarity),
		DropRate: req.DropRate,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := h.gacha.UpdateItem(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
