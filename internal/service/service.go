package service

import (
	"context"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

type RoomInteractor interface {
	CreateRoom(ctx context.Context) (*domain.Room, error)
	RoomExists(ctx context.Context, code string) (bool, error)
	Handle(ctx context.Context, sessionID string, env domain.InboundEnvelope) error
	Disconnect(ctx context.Context, sessionID string) error
}

// Broadcaster is the fan-out side the engine emits through. Sends must
// never block; a dead recipient is skipped, not reported.
type Broadcaster interface {
	BroadcastRoom(ctx context.Context, code string, env domain.Envelope)
	Unicast(sessionID string, env domain.Envelope)
}
