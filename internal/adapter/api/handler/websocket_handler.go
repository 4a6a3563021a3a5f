package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"trashlink/internal/adapter/api/middleware"
	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/internal/infrastructure/realtime"
	ws "trashlink/internal/infrastructure/websocket"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	subscriber     realtime.Subscriber
	userRepo       repository.UserRepository
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	authMiddleware *middleware.AuthMiddleware,
	subscriber realtime.Subscriber,
	userRepo repository.UserRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		subscriber:     subscriber,
		userRepo:       userRepo,
	}
}

// HandleWebSocket upgrades the connection and keeps it fed with request
// changes relevant to the caller until the socket closes. Browsers cannot set
// an Authorization header on the upgrade, so the token rides a query param.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	cancel := h.watchRequests(user)

	go func() {
		client.ReadPump(h.wsManager)
		if cancel != nil {
			cancel()
		}
	}()
	go client.WritePump()

	return nil
}

// watchRequests subscribes the connected user to the request changes their
// role cares about: a collector watches the pending pool, a customer watches
// their own requests.
func (h *WebSocketHandler) watchRequests(user *entity.User) realtime.CancelFunc {
	filter := realtime.Filter{
		Collection: "requests",
		Field:      "customerId",
		Value:      user.ID,
	}
	if user.Role == entity.RoleCollector {
		filter.Field = "status"
		filter.Value = entity.RequestPending
	}

	// Background context on purpose: the subscription outlives the HTTP
	// request and is torn down when the socket closes.
	cancel, err := h.subscriber.Subscribe(context.Background(), filter, func(ev realtime.Event) {
		payload, err := json.Marshal(map[string]interface{}{
			"type":    "request_change",
			"payload": ev.Data,
		})
		if err != nil {
			logger.Error("Failed to marshal request change: %v", err)
			return
		}
		h.wsManager.SendToUser(user.ID, payload)
	})
	if err != nil {
		logger.Warn("Live subscription failed for %s, socket will rely on direct pushes: %v", user.ID, err)
		return nil
	}

	return cancel
}
