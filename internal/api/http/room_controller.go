package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
	"github.com/Suleiman700/Watch-Together-v4/internal/registry"
	"github.com/Suleiman700/Watch-Together-v4/internal/service"
	"github.com/Suleiman700/Watch-Together-v4/lib/logger/sl"
)

type RoomController struct {
	rooms    service.RoomInteractor
	sessions *registry.SessionRegistry
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewRoomController(rooms service.RoomInteractor, sessions *registry.SessionRegistry, log *slog.Logger) *RoomController {
	if log == nil {
		log = slog.Default()
	}
	return &RoomController{
		rooms:    rooms,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	type CreateRoomRequest struct {
		Username string `json:"username" binding:"required,min=2,max=20"`
	}
	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	room, err := c.rooms.CreateRoom(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"roomCode": room.Code})
}

func (c *RoomController) RoomExists(ctx *gin.Context) {
	code := ctx.Param("roomCode")
	if len(code) != domain.CodeLength {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid room code"})
		return
	}

	exists, err := c.rooms.RoomExists(ctx.Request.Context(), code)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check room"})
		return
	}
	if !exists {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exists": true})
}

// HandleWS owns one connection for its whole life: issue the session
// id, pump outbound frames from the client buffer, and feed inbound
// frames to the engine one at a time, in the order received. A bad
// frame earns the sender an error frame and nothing more; only a read
// failure ends the session.
func (c *RoomController) HandleWS(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Warn("ws upgrade failed", sl.Err(err))
		return
	}

	sessionID := uuid.New().String()
	client := domain.NewClient(sessionID, conn)
	c.sessions.Register(client)

	client.Enqueue(domain.Envelope{
		Type:    domain.TypeSession,
		Payload: domain.SessionPayload{SessionID: sessionID},
	})

	go writePump(client)

	c.readLoop(ctx.Request.Context(), client)

	c.sessions.Unregister(sessionID)
	if err := c.rooms.Disconnect(context.Background(), sessionID); err != nil {
		c.log.Debug("disconnect cleanup failed", slog.String("session", sessionID), sl.Err(err))
	}
	_ = client.Close()
}

func (c *RoomController) readLoop(ctx context.Context, client *domain.Client) {
	for {
		_, data, err := client.Socket.ReadMessage()
		if err != nil {
			return
		}

		var env domain.InboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			client.Enqueue(errorFrame("invalid message format"))
			continue
		}

		if err := c.rooms.Handle(ctx, client.SessionID, env); err != nil {
			if shouldReport(err) {
				client.Enqueue(errorFrame(err.Error()))
			}
		}
	}
}

func writePump(client *domain.Client) {
	for {
		select {
		case <-client.Closed():
			return
		case env := <-client.Events:
			if err := client.Socket.WriteJSON(env); err != nil {
				_ = client.Close()
				return
			}
		}
	}
}

func errorFrame(message string) domain.Envelope {
	return domain.Envelope{
		Type:    domain.TypeError,
		Payload: domain.ErrorPayload{Message: message},
	}
}

// shouldReport filters errors worth echoing back. Context errors mean
// the connection itself is going away.
func shouldReport(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
