package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hagegesam/fiverr-share-earn/internal/middleware"
	"github.com/hagegesam/fiverr-share-earn/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	linkService service.LinkService,
	clickService service.ClickService,
	statsService service.StatsService,
	fraudChecker service.FraudChecker,
	baseURL string,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	linkHandler := NewLinkHandler(linkService, clickService, fraudChecker, baseURL, logger)
	statsHandler := NewStatsHandler(statsService, logger)

	router.GET("/health", HealthCheck)

	router.POST("/links", linkHandler.CreateLink)
	router.DELETE("/links/:code", linkHandler.DeleteLink)
	router.GET("/stats", statsHandler.GetStats)

	// Редирект — корневой путь; статические роуты выше имеют приоритет
	router.GET("/:code", linkHandler.Redirect)

	return router
}
