package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter mounts the game and replay APIs. An empty allowedOrigins lets any
// origin call the API.
func NewRouter(games *GameApi, replays *ReplayApi, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(ZapLogger(log), gin.Recovery(), cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	g := router.Group("/games")
	g.POST("", games.CreateGame)
	g.GET("/:id", games.GetGame)
	g.DELETE("/:id", games.DeleteGame)
	g.POST("/:id/moves", games.PlayMove)
	g.POST("/:id/engine-move", games.EngineMove)
	g.GET("/:id/chronicle", games.GetChronicle)
	router.GET("/chronicles", games.ListChronicles)

	if replays != nil {
		router.POST("/replays/:username", replays.StartReplay)
		router.GET("/replays/:job_id", replays.GetReplayStatus)
	}
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		cfg.AllowOrigins = allowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
