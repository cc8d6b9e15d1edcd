package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alignment_rooms/internal/api/handlers"
	"alignment_rooms/internal/middleware"
	"alignment_rooms/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	roomHandler := handlers.NewRoomHandler(services.Room, services.Share)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.User)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 身份同步，房間內顯示屬性的來源
		authorized.POST("/auth/sync", authHandler.Sync)

		// 房間相關
		rooms := authorized.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)                 // 獲取房間列表與人數
			rooms.GET("/:id/shares", roomHandler.ListRoomShares) // 房間的分享記錄
		}

		// 自己的分享記錄
		authorized.GET("/me/shares", roomHandler.ListMyShares)

		// WebSocket 連接點，加入、離開、聊天、階段轉換與分享都走這條雙向通道
		authorized.GET("/ws", wsHandler.HandleWebSocket)
	}
}
