package router

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/handler"
	"trashlink/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.GET("", chatHandler.ListConversations)
	conversations.GET("/unread-total", chatHandler.UnreadTotal)
	conversations.GET("/:id/messages", chatHandler.ListMessages)
	conversations.POST("/:id/messages", chatHandler.SendMessage)
	conversations.PUT("/:id/read", chatHandler.MarkRead)

	// A conversation is opened from the request it belongs to.
	requests := e.Group("/v1/requests")
	requests.Use(authMiddleware.Authenticate)
	requests.POST("/:id/conversation", chatHandler.OpenConversation)
}
