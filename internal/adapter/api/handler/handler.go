package handler

import (
	"trashlink/internal/usecase"
)

var (
	authHandler      *AuthHandler
	userHandler      *UserHandler
	collectorHandler *CollectorHandler
	requestHandler   *RequestHandler
	chatHandler      *ChatHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	collectorUseCase *usecase.CollectorUseCase,
	requestUseCase *usecase.RequestUseCase,
	chatUseCase *usecase.ChatUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	collectorHandler = NewCollectorHandler(collectorUseCase)
	requestHandler = NewRequestHandler(requestUseCase)
	chatHandler = NewChatHandler(chatUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetCollectorHandler() *CollectorHandler {
	return collectorHandler
}

func GetRequestHandler() *RequestHandler {
	return requestHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
