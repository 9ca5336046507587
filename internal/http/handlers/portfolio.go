package handlers

import (
	"net/http"

	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPortfolio(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	p, err := h.portfolio.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type tradeRequest struct {
	Action string  `json:"action" binding:"required"`
	Symbol string  `json:"symbol" binding:"required"`
	Shares float64 `json:"shares" binding:"required"`
	Price  float64 `json:"price" binding:"required"`
}

func (h *Handler) PortfolioTrade(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action, symbol, shares and price required"})
		return
	}

	var result *service.TradeResult
	var err error
	switch req.Action {
	case "buy":
		result, err = h.portfolio.Buy(c.Request.Context(), id, req.Symbol, req.Shares, req.Price)
	case "sell":
		result, err = h.portfolio.Sell(c.Request.Context(), id, req.Symbol, req.Shares, req.Price)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be buy or sell"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type valueRequest struct {
	Prices map[string]float64 `json:"prices" binding:"required"`
}

// PortfolioValue revalues the holdings with client-supplied quotes and
// appends a point to the rolling history
func (h *Handler) PortfolioValue(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		return
	}

	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prices required"})
		return
	}

	total, err := h.portfolio.RecordValue(c.Request.Context(), id, req.Prices)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_value": total})
}
