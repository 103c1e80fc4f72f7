package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/renju-backend/internal/apperror"
	"github.com/rocketscienceinc/renju-backend/internal/usecase"
)

type roomCoordinator interface {
	OpenRoom(ctx context.Context, connID string) (*usecase.RoomState, error)
	JoinRoom(ctx context.Context, connID, roomID string) (*usecase.RoomState, error)
	ToggleReady(ctx context.Context, connID, roomID string) (*usecase.RoomState, error)
	StartGame(ctx context.Context, connID, roomID string) (*usecase.RoomState, error)
	PlaceMove(ctx context.Context, connID, roomID string, row, col int) (*usecase.MoveResult, error)
	Surrender(ctx context.Context, connID, roomID string) (*usecase.MoveResult, error)
	ResetGame(ctx context.Context, connID, roomID string) (*usecase.RoomState, error)
	Timeout(ctx context.Context, connID, roomID string) (*usecase.MoveResult, error)
	LeaveRoom(ctx context.Context, connID, roomID string) (*usecase.LeaveResult, error)
	Disconnect(ctx context.Context, connID string) error
	ListRooms(ctx context.Context) ([]usecase.RoomSummary, error)
}

type handlerFunc func(ctx context.Context, c *client, msg *Message) (any, error)

type Server struct {
	logger   *slog.Logger
	rooms    roomCoordinator
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, rooms roomCoordinator, hub *Hub, allowedOrigins []string) *Server {
	server := &Server{
		logger: logger.With("component", "websocket_server"),
		rooms:  rooms,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["lobby:rooms"] = server.handleListRooms
	server.handlers["room:open"] = server.handleOpenRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:ready"] = server.handleToggleReady
	server.handlers["room:leave"] = server.handleLeaveRoom
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["game:move"] = server.handlePlaceMove
	server.handlers["game:surrender"] = server.handleSurrender
	server.handlers["game:reset"] = server.handleResetGame
	server.handlers["game:timeout"] = server.handleTimeout

	return server
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)
	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	that.hub.register(c)
	go that.hub.writePump(c)

	log.Info("WebSocket connection established", "conn_id", c.id)

	that.hub.reply(c, "connect", ConnectPayload{ConnectionID: c.id})

	ctx := req.Context()
	that.readPump(ctx, c)

	that.hub.unregister(c)
	_ = conn.Close()

	if err = that.rooms.Disconnect(context.WithoutCancel(ctx), c.id); err != nil {
		log.Error("failed to release rooms of closed connection", "conn_id", c.id, "error", err)
	}

	log.Info("WebSocket connection closed", "conn_id", c.id)
}

// readPump reads frames until the peer goes away and dispatches each one.
func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump", "conn_id", c.id)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.hub.reply(c, "error", newErrorPayload(apperror.ErrInvalidPayload))
			continue
		}

		that.dispatch(ctx, c, &message)
	}
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) {
	log := that.logger.With("method", "dispatch", "conn_id", c.id, "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.hub.reply(c, message.Action, newErrorPayload(apperror.ErrUnknownAction))
		return
	}

	payload, err := handler(ctx, c, message)
	if err != nil {
		if !apperror.IsValidation(err) {
			log.Error("error processing message", "error", err)
		}

		that.hub.reply(c, message.Action, newErrorPayload(err))
		return
	}

	that.hub.reply(c, message.Action, payload)
}
