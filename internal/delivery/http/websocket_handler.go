package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/delivery/http/middleware"
	"github.com/Harsh-BH/codepractice/internal/usecase"
)

var upgrader = websocket.Upgrader{
	// Tokens travel in the query string, so the origin adds nothing.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteWait = 5 * time.Second

// WebSocketHandler pushes a token's result until it is terminal.
type WebSocketHandler struct {
	resultUC *usecase.GetResultUsecase
	interval time.Duration
	logger   *zap.Logger
}

func NewWebSocketHandler(resultUC *usecase.GetResultUsecase, interval time.Duration, logger *zap.Logger) *WebSocketHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &WebSocketHandler{
		resultUC: resultUC,
		interval: interval,
		logger:   logger,
	}
}

// Stream handles GET /code/result/:token/stream (WebSocket upgrade)
func (h *WebSocketHandler) Stream(c *gin.Context) {
	token := c.Param("token")
	userID := middleware.CallerFrom(c).UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	h.logger.Debug("WebSocket connection opened", zap.String("token", token))

	// Drain client frames so close messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		resp, err := h.resultUC.Execute(ctx, userID, token)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err != nil {
			status, body := errorResponse(h.logger, c.FullPath(), err)
			body["status"] = status
			_ = conn.WriteJSON(body)
			return
		}
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}
		if !resp.Result.IsProcessing {
			h.logger.Debug("Result terminal, closing WebSocket", zap.String("token", token))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
				time.Now().Add(wsWriteWait))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}
