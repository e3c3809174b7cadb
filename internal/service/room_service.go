package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
	"github.com/Suleiman700/Watch-Together-v4/internal/repository"
	"github.com/Suleiman700/Watch-Together-v4/lib/logger/sl"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrEmptyPayload     = errors.New("payload is required")
)

// RoomService is the synchronization engine: it consumes one inbound
// event at a time, mutates the store, and decides the broadcast set.
//
// Every mutation touching a room's roster or host flag runs inside
// that room's mutex, so near-simultaneous joins, leaves, kicks and
// transfers can never produce two hosts or none. Distinct rooms share
// nothing and proceed in parallel.
type RoomService struct {
	store    repository.RoomStore
	relay    Broadcaster
	log      *slog.Logger
	validate *validator.Validate

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRoomService(store repository.RoomStore, relay Broadcaster, log *slog.Logger) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomService{
		store:    store,
		relay:    relay,
		log:      log,
		validate: validator.New(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// CreateRoom allocates a fresh collision-free invite code and creates
// the room. The caller (REST layer) validates the requesting username.
func (s *RoomService) CreateRoom(ctx context.Context) (*domain.Room, error) {
	const op = "service.room.create"

	for {
		code := generateCode()
		room, err := s.store.CreateRoom(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrRoomCodeExists) {
				continue
			}
			return nil, err
		}

		s.log.Info("room created", slog.String("op", op), slog.String("room", room.Code))
		return room, nil
	}
}

func (s *RoomService) RoomExists(ctx context.Context, code string) (bool, error) {
	_, err := s.store.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Handle dispatches one inbound frame. A returned error belongs to the
// offending connection only: the transport layer reports it as an
// error frame and keeps the connection open.
func (s *RoomService) Handle(ctx context.Context, sessionID string, env domain.InboundEnvelope) error {
	switch env.Type {
	case domain.TypeJoin:
		var p joinPayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.join(ctx, sessionID, p)
	case domain.TypeLeave:
		return s.Disconnect(ctx, sessionID)
	case domain.TypeMessage:
		var p messagePayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.message(ctx, p)
	case domain.TypeUpdateVideo:
		var p updateVideoPayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.updateVideo(ctx, p)
	case domain.TypePlay, domain.TypePause, domain.TypeSeek:
		var p playbackPayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.playback(ctx, env, p)
	case domain.TypeLike, domain.TypeReaction, domain.TypeScreenShare, domain.TypeICECandidate:
		var p relayPayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		s.relay.BroadcastRoom(ctx, p.RoomCode, env.Forward())
		return nil
	case domain.TypeKick:
		var p governancePayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.kick(ctx, sessionID, p)
	case domain.TypeTransferHost:
		var p governancePayload
		if err := s.decode(env.Payload, &p); err != nil {
			return err
		}
		return s.transferHost(ctx, sessionID, p)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEventType, env.Type)
	}
}

// join inserts the participant and assigns host to the first member of
// an empty room. The roster check and the insert run as one unit under
// the room lock, so two racing joins to a brand-new room cannot both
// win host. The sync unicast goes out strictly after the insert.
func (s *RoomService) join(ctx context.Context, sessionID string, p joinPayload) error {
	const op = "service.room.join"
	log := s.log.With(slog.String("op", op), slog.String("room", p.RoomCode))

	lock := s.lockFor(p.RoomCode)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.store.GetRoom(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	roster, err := s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	participant := &domain.Participant{
		RoomCode:  p.RoomCode,
		Username:  p.Username,
		SessionID: sessionID,
		IsHost:    len(roster) == 0,
		JoinedAt:  time.Now().UTC(),
	}
	stored, err := s.store.AddParticipant(ctx, participant)
	if err != nil {
		return err
	}

	roster, err = s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}
	history, err := s.store.Messages(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, domain.Envelope{
		Type: domain.TypeJoin,
		Payload: domain.JoinPayload{
			Username:     stored.Username,
			SessionID:    stored.SessionID,
			IsHost:       stored.IsHost,
			Participants: roster,
		},
	})

	s.relay.Unicast(sessionID, domain.Envelope{
		Type: domain.TypeSync,
		Payload: domain.SyncPayload{
			VideoURL:     room.VideoURL,
			IsPlaying:    room.IsPlaying,
			CurrentTime:  room.CurrentTime,
			Participants: roster,
			Messages:     history,
		},
	})

	log.Info("participant joined",
		slog.String("session", sessionID),
		slog.String("username", stored.Username),
		slog.Bool("host", stored.IsHost),
	)
	return nil
}

// Disconnect removes whatever participant the session maps to,
// promoting a new host when needed. Explicit leave frames and
// transport-level drops both land here; a second notification for an
// already-removed session is a no-op.
func (s *RoomService) Disconnect(ctx context.Context, sessionID string) error {
	const op = "service.room.disconnect"

	code, err := s.store.RoomOf(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil
		}
		return err
	}

	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.store.RemoveParticipant(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil
		}
		return err
	}

	roster, err := s.store.Participants(ctx, code)
	if err != nil {
		return err
	}

	if removed.IsHost && len(roster) > 0 {
		newHost := earliestJoined(roster)
		if err := s.store.MakeHost(ctx, newHost.SessionID); err != nil {
			return err
		}
		roster, err = s.store.Participants(ctx, code)
		if err != nil {
			return err
		}

		s.relay.BroadcastRoom(ctx, code, domain.Envelope{
			Type: domain.TypeTransferHost,
			Payload: domain.TransferHostPayload{
				RoomCode:        code,
				NewHostUsername: newHost.Username,
				PreviousHost:    removed.Username,
				Participants:    roster,
			},
		})

		s.log.Info("host promoted",
			slog.String("op", op),
			slog.String("room", code),
			slog.String("username", newHost.Username),
		)
	}

	s.relay.BroadcastRoom(ctx, code, domain.Envelope{
		Type: domain.TypeLeave,
		Payload: domain.LeavePayload{
			SessionID:    sessionID,
			Username:     removed.Username,
			WasHost:      removed.IsHost,
			Participants: roster,
		},
	})

	return nil
}

func (s *RoomService) message(ctx context.Context, p messagePayload) error {
	msg, err := s.store.AddMessage(ctx, p.RoomCode, p.Username, p.Message)
	if err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, domain.Envelope{
		Type:    domain.TypeMessage,
		Payload: msg,
	})
	return nil
}

func (s *RoomService) updateVideo(ctx context.Context, p updateVideoPayload) error {
	const op = "service.room.updateVideo"

	room, err := s.store.SetVideo(ctx, p.RoomCode, p.VideoURL)
	if err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, domain.Envelope{
		Type: domain.TypeUpdateVideo,
		Payload: domain.UpdateVideoPayload{
			RoomCode: room.Code,
			VideoURL: room.VideoURL,
		},
	})

	s.log.Info("video updated", slog.String("op", op), slog.String("room", room.Code))
	return nil
}

// playback records the last-known video state and relays the frame
// verbatim to the whole room, sender included. Last writer wins;
// clients reconcile small divergences themselves.
func (s *RoomService) playback(ctx context.Context, env domain.InboundEnvelope, p playbackPayload) error {
	playing := false
	switch env.Type {
	case domain.TypePlay:
		playing = true
	case domain.TypePause:
		playing = false
	case domain.TypeSeek:
		room, err := s.store.GetRoom(ctx, p.RoomCode)
		if err != nil {
			return err
		}
		playing = room.IsPlaying
	}

	if err := s.store.SetPlayback(ctx, p.RoomCode, playing, p.CurrentTime); err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, env.Forward())
	return nil
}

// kick removes the target if and only if the acting session currently
// holds host in that room and the target is another present member.
// Unauthorized attempts change nothing and broadcast nothing.
func (s *RoomService) kick(ctx context.Context, sessionID string, p governancePayload) error {
	const op = "service.room.kick"
	log := s.log.With(slog.String("op", op), slog.String("room", p.RoomCode))

	lock := s.lockFor(p.RoomCode)
	lock.Lock()
	defer lock.Unlock()

	roster, err := s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	actor := findBySession(roster, sessionID)
	target := findBySession(roster, p.TargetSessionID)
	if actor == nil || !actor.IsHost || target == nil || target.SessionID == sessionID {
		log.Debug("kick refused",
			slog.String("session", sessionID),
			slog.String("target", p.TargetSessionID),
		)
		return nil
	}

	if _, err := s.store.RemoveParticipant(ctx, target.SessionID); err != nil {
		return err
	}

	roster, err = s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, domain.Envelope{
		Type: domain.TypeKick,
		Payload: domain.KickPayload{
			RoomCode:     p.RoomCode,
			KickedUser:   target.Username,
			Participants: roster,
		},
	})

	s.relay.Unicast(target.SessionID, domain.Envelope{
		Type:    domain.TypeKicked,
		Payload: domain.KickedPayload{Message: "You have been kicked from the room"},
	})

	log.Info("participant kicked", slog.String("username", target.Username))
	return nil
}

// transferHost flips host off the current holder and onto the target
// as one store operation; no observer can catch the room in between.
func (s *RoomService) transferHost(ctx context.Context, sessionID string, p governancePayload) error {
	const op = "service.room.transferHost"
	log := s.log.With(slog.String("op", op), slog.String("room", p.RoomCode))

	lock := s.lockFor(p.RoomCode)
	lock.Lock()
	defer lock.Unlock()

	roster, err := s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	actor := findBySession(roster, sessionID)
	target := findBySession(roster, p.TargetSessionID)
	if actor == nil || !actor.IsHost || target == nil || target.SessionID == sessionID {
		log.Debug("transfer refused",
			slog.String("session", sessionID),
			slog.String("target", p.TargetSessionID),
		)
		return nil
	}

	if err := s.store.MakeHost(ctx, target.SessionID); err != nil {
		return err
	}

	roster, err = s.store.Participants(ctx, p.RoomCode)
	if err != nil {
		return err
	}

	s.relay.BroadcastRoom(ctx, p.RoomCode, domain.Envelope{
		Type: domain.TypeTransferHost,
		Payload: domain.TransferHostPayload{
			RoomCode:        p.RoomCode,
			NewHostUsername: target.Username,
			PreviousHost:    actor.Username,
			Participants:    roster,
		},
	})

	log.Info("host transferred", slog.String("username", target.Username))
	return nil
}

func (s *RoomService) decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		s.log.Debug("payload rejected", sl.Err(err))
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// lockFor returns the mutex guarding one room's roster and host state.
// Locks are created on demand and live as long as the process, same as
// rooms themselves.
func (s *RoomService) lockFor(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[code] = lock
	}
	return lock
}

func findBySession(roster []*domain.Participant, sessionID string) *domain.Participant {
	for _, p := range roster {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

func earliestJoined(roster []*domain.Participant) *domain.Participant {
	best := roster[0]
	for _, p := range roster[1:] {
		if p.JoinOrder < best.JoinOrder {
			best = p
		}
	}
	return best
}
