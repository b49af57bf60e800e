package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/faucet/service"
)

// SetupRouter sets up the Gin router for the dashboard API
func SetupRouter(faucet Faucet, dashboard Snapshotter, auth *service.DashboardAuth) *gin.Engine {
	router := gin.Default()

	handlers := NewDashboardHandlers(faucet, dashboard, auth)

	router.POST("/auth/token", handlers.Token)

	api := router.Group("/api")
	api.Use(AuthMiddleware(auth))
	{
		api.GET("/dashboard", handlers.Dashboard)
		api.POST("/session", handlers.Connect)
		api.DELETE("/session", handlers.Logout)
		api.POST("/claim", handlers.Claim)
		api.POST("/consent", handlers.Consent)
		api.GET("/tx/:hash", handlers.Receipt)
	}

	return router
}
