package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Server upgrades HTTP requests to websocket connections and runs each
// connection's event loop. Every connection gets its own goroutine (echo
// already runs handlers concurrently); the Registry is the only shared state.
type Server struct {
	engine   *Engine
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewServer creates a new realtime Server
func NewServer(engine *Engine, log logrus.FieldLogger) *Server {
	return &Server{
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// HandleConnection upgrades the request and serves the connection until it
// closes. A socket-path error never crashes the process; the loop exits and
// presence is torn down.
func (s *Server) HandleConnection(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to upgrade connection")
	}

	client := NewClient(conn)
	defer func() {
		s.engine.HandleDisconnect(client)
		client.Close()
	}()

	ctx := c.Request().Context()
	for {
		env, err := client.ReadEnvelope()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Debug("websocket read failed")
			}
			return nil
		}
		s.dispatch(ctx, client, env)
	}
}

// dispatch decodes and routes one inbound event. Malformed payloads are
// dropped; an event from a client must never take the connection down.
func (s *Server) dispatch(ctx context.Context, client *Client, env *Envelope) {
	switch env.Event {
	case EventAddUser:
		var data AddUserData
		if s.decode(env, &data) {
			s.engine.HandleAddUser(client, data.UserID)
		}
	case EventSendMessage:
		var data SendMessageData
		if s.decode(env, &data) {
			s.engine.HandleSendMessage(ctx, data.Message, data.Meta)
		}
	case EventIsTyping:
		var data TypingData
		if s.decode(env, &data) {
			s.engine.HandleTyping(client, data.ReceiverID, data.Status)
		}
	case EventUnreadStatus:
		var data UnreadStatusData
		if s.decode(env, &data) {
			s.engine.HandleUnreadStatus(ctx, data.Message, data.Unread)
		}
	case EventMessageRead:
		var data MessageReadData
		if s.decode(env, &data) {
			s.engine.HandleMessageRead(ctx, data.ChatID, data.ReceiverID)
		}
	default:
		s.log.WithField("event", env.Event).Debug("unknown realtime event")
	}
}

func (s *Server) decode(env *Envelope, v interface{}) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		s.log.WithError(err).WithField("event", env.Event).Warn("malformed event payload")
		return false
	}
	return true
}
