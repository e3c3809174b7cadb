package relay

import (
	"context"
	"log/slog"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
	"github.com/Suleiman700/Watch-Together-v4/internal/registry"
	"github.com/Suleiman700/Watch-Together-v4/internal/repository"
)

// Relay fans a frame out to the live connections of a room's current
// roster. Dead or missing transports are skipped silently and never
// abort delivery to the remaining recipients; enqueueing is
// non-blocking so a stalled peer cannot hold up the caller.
type Relay struct {
	store    repository.RoomStore
	sessions *registry.SessionRegistry
	log      *slog.Logger
}

func New(store repository.RoomStore, sessions *registry.SessionRegistry, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{store: store, sessions: sessions, log: log}
}

func (r *Relay) BroadcastRoom(ctx context.Context, code string, env domain.Envelope) {
	roster, err := r.store.Participants(ctx, code)
	if err != nil {
		r.log.Debug("broadcast roster lookup failed",
			slog.String("room", code), slog.String("type", env.Type), slog.Any("error", err))
		return
	}

	for _, p := range roster {
		r.send(p.SessionID, env)
	}
}

func (r *Relay) Unicast(sessionID string, env domain.Envelope) {
	r.send(sessionID, env)
}

func (r *Relay) send(sessionID string, env domain.Envelope) {
	client, ok := r.sessions.Lookup(sessionID)
	if !ok {
		return
	}
	if !client.Enqueue(env) {
		r.log.Debug("dropping frame",
			slog.String("session", sessionID), slog.String("type", env.Type))
	}
}
