package router

import (
	"github.com/gin-gonic/gin"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/http/handler"
)

func SetupRoutes(router *gin.Engine, inbound *handler.InboundEmailHandler, slackActions *handler.SlackActionsHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhook := router.Group("/webhook")
	{
		webhook.POST("/inbound-email", inbound.Receive)
	}

	slackGroup := router.Group("/slack")
	{
		slackGroup.POST("/actions", slackActions.Handle)
	}
}
