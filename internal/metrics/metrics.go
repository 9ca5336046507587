package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GachaPulls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hamsterhub_gacha_pulls_total",
		Help: "Gacha pulls by payment method and item rarity.",
	}, []string{"method", "rarity"})

	Trades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hamsterhub_portfolio_trades_total",
		Help: "Portfolio trades by action.",
	}, []string{"action"})

	GameRounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hamsterhub_game_rounds_total",
		Help: "Investment game rounds resolved.",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hamsterhub_tasks_completed_total",
		Help: "Hamsterboard tasks completed with winners paid.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hamsterhub_game_rooms_active",
		Help: "Investment game rooms currently alive.",
	})
)
