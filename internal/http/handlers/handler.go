package handlers

import (
	"errors"
	"net/http"
	"time"

	"hamsterhub/internal/config"
	"hamsterhub/internal/discord"
	"hamsterhub/internal/domain"
	"hamsterhub/internal/game"
	"hamsterhub/internal/http/middleware"
	"hamsterhub/internal/repository"
	"hamsterhub/internal/service"
	"hamsterhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	cfg        *config.Config
	db         *pgxpool.Pool
	memberRepo *repository.MemberRepository
	currency   *service.CurrencyService
	gacha      *service.GachaService
	portfolio  *service.PortfolioService
	board      *service.HamsterboardService
	hub        *ws.Hub
	notifier   *discord.Notifier
	adminIDs   map[string]bool
}

func New(
	cfg *config.Config,
	db *pgxpool.Pool,
	currency *service.CurrencyService,
	gacha *service.GachaService,
	portfolio *service.PortfolioService,
	board *service.HamsterboardService,
	hub *ws.Hub,
	notifier *discord.Notifier,
) *Handler {
	admins := make(map[string]bool, len(cfg.AdminDiscordIDs))
	for _, id := range cfg.AdminDiscordIDs {
		admins[id] = true
	}
	return &Handler{
		cfg:        cfg,
		db:         db,
		memberRepo: repository.NewMemberRepository(db),
		currency:   currency,
		gacha:      gacha,
		portfolio:  portfolio,
		board:      board,
		hub:        hub,
		notifier:   notifier,
		adminIDs:   admins,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.POST("/api/auth/discord", middleware.RateLimit(10, time.Minute), h.AuthDiscord)

	api := r.Group("/api", middleware.Auth())
	{
		api.GET("/profile", h.GetProfile)
		api.GET("/balance", h.GetBalance)
		api.GET("/history", h.GetHistory)
		api.POST("/rewards/claim", h.ClaimReward)
		api.GET("/leaderboard", h.GetLeaderboard)

		api.GET("/gacha/items", h.GetGachaItems)
		api.GET("/gacha/pulls", h.GetGachaPulls)
		api.POST("/gacha/pull", middleware.RateLimit(30, time.Minute), h.GachaPull)
		api.POST("/shop/tickets", h.BuyTickets)

		api.GET("/portfolio", h.GetPortfolio)
		api.POST("/portfolio/trade", h.PortfolioTrade)
		api.POST("/portfolio/value", h.PortfolioValue)

		api.GET("/hamsterboard/tasks", h.ListTasks)
		api.POST("/hamsterboard/tasks", h.PostTask)
		api.GET("/hamsterboard/tasks/:id", h.GetTask)
		api.POST("/hamsterboard/tasks/:id/accept", h.AcceptTask)
		api.POST("/hamsterboard/tasks/:id/complete", h.CompleteTask)
		api.POST("/hamsterboard/tasks/:id/cancel", h.CancelTask)
		api.POST("/hamsterboard/tasks/:id/select-winners", h.SelectWinners)

		admin := api.Group("/admin", h.requireAdmin)
		{
			admin.GET("/gacha/items", h.GetAllGachaItems)
			admin.POST("/gacha/items", h.CreateGachaItem)
			admin.PATCH("/gacha/items/:id", h.UpdateGachaItem)
			admin.POST("/adjust", h.AdminAdjust)
		}
	}

	r.GET("/ws/game", ws.ServeWS(h.hub))
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// memberID unwraps the authenticated member, aborting on a broken context
func memberID(c *gin.Context) (int64, bool) {
	id, ok := middleware.MemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	}
	return id, ok
}

// respondError maps service sentinels onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var cooldown *service.RewardCooldownError
	if errors.As(err, &cooldown) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   cooldown.Error(),
			"next_at": cooldown.NextAt,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientTickets),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPull),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrNoActiveItems),
		errors.Is(err, service.ErrInvalidReward),
		errors.Is(err, service.ErrNoWinners),
		errors.Is(err, domain.ErrInvalidTrade),
		errors.Is(err, domain.ErrInsufficientCash),
		errors.Is(err, domain.ErrNoHolding),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, game.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrNotTaskPoster),
		errors.Is(err, service.ErrOwnTask):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrTaskNotOpen),
		errors.Is(err, service.ErrTaskNotInProgress),
		errors.Is(err, service.ErrTaskTerminal),
		errors.Is(err, service.ErrAlreadyAccepted),
		errors.Is(err, service.ErrNotAccepted),
		errors.Is(err, service.ErrWinnerNotEligible):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// requireAdmin gates the admin group on the configured Discord id allowlist
func (h *Handler) requireAdmin(c *gin.Context) {
	id, ok := memberID(c)
	if !ok {
		c.Abort()
		return
	}

	member, err := h.memberRepo.GetByID(c.Request.Context(), id)
	if err != nil || member == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	if !h.adminIDs[member.DiscordID] {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	c.Next()
}
