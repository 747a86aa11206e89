package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg"
	"chat_backend_service/pkg/logger"
	"chat_backend_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// wsChannel one websocket connection as a PushChannel, writes serialized
type wsChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSChannel(conn *websocket.Conn) *wsChannel {
	return &wsChannel{conn: conn}
}

// Push write the response as one text frame
func (c *wsChannel) Push(resp domain.WSResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// ChatWebsocketHandler own the connection lifecycle of the push layer
type ChatWebsocketHandler struct {
	registry  *SessionRegistry
	messageUC *MessageUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(registry *SessionRegistry, messageUC *MessageUseCase) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		registry:  registry,
		messageUC: messageUC,
	}
}

// HandleConnection entry point of one websocket connection
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, _ := conn.Locals(middlewares.TokenUserID).(string)
	sessionID, _ := conn.Locals(middlewares.TokenSessionID).(string)
	if sessionID == "" {
		sessionID = pkg.NewID()
	}
	deviceID := conn.Query("device_id")
	if deviceID == "" {
		deviceID = "default"
	}

	logger.Log.Info("websocket connect",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID),
		zap.String("device_id", deviceID))

	ch := newWSChannel(conn)
	replaced := h.registry.Identify(userID, deviceID, sessionID, ch)
	if replaced {
		logger.Log.Info("websocket session replaced",
			zap.String("user_id", userID),
			zap.String("device_id", deviceID))
	}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		cancel()
		h.registry.Remove(sessionID)
		logger.Log.Info("websocket close", zap.String("user_id", userID), zap.String("session_id", sessionID))
		conn.Close()
	}()

	// fiber answers close frames itself, the handler only logs
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		h.textMessageAction(ctx, ch, sessionID, userID, message)
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, ch *wsChannel, sessionID, userID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Event: req.Action, Success: false}
	switch req.Action {
	case string(domain.Identify):
		if req.DeviceID == "" {
			resp.Error = "device_id is required"
			break
		}
		h.registry.Identify(userID, req.DeviceID, sessionID, ch)
		resp.Success = true

	case string(domain.SendMessage):
		created, err := h.messageUC.Post(ctx, sessionID, req.RoomID, userID, req.Content, nil)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload = created
		}

	case string(domain.ReadMessage):
		matched, err := h.messageUC.MarkRead(ctx, sessionID, req.RoomID, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload = map[string]interface{}{"matched_count": matched}
		}

	default:
		resp.Error = "unknown action"
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ",
			zap.String("UserID", userID),
			zap.String("Action", req.Action),
			zap.String("err", resp.Error))
	}
	if err := ch.Push(resp); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}
