package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomCodeExists      = errors.New("room code already exists")
	ErrParticipantNotFound = errors.New("participant not found")
)

// InMemoryRoomStore keeps all room state in process memory. Rosters and
// chat history are insertion-ordered slices; the sessions map is a
// reverse index giving constant-time disconnect resolution.
//
// All reads return copies, so a roster snapshot taken by one caller can
// never observe a half-applied host flip made by another.
type InMemoryRoomStore struct {
	mu           sync.RWMutex
	rooms        map[string]*domain.Room
	participants map[string][]*domain.Participant
	messages     map[string][]*domain.ChatMessage
	sessions     map[string]string // sessionID -> roomCode
	joinSeq      int64
}

func NewInMemoryRoomStore() *InMemoryRoomStore {
	return &InMemoryRoomStore{
		rooms:        make(map[string]*domain.Room),
		participants: make(map[string][]*domain.Participant),
		messages:     make(map[string][]*domain.ChatMessage),
		sessions:     make(map[string]string),
	}
}

func (s *InMemoryRoomStore) CreateRoom(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[code]; ok {
		return nil, ErrRoomCodeExists
	}

	room := domain.NewRoom(code)
	s.rooms[code] = room
	s.participants[code] = nil
	s.messages[code] = nil

	out := *room
	return &out, nil
}

func (s *InMemoryRoomStore) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	out := *room
	return &out, nil
}

func (s *InMemoryRoomStore) SetVideo(ctx context.Context, code string, videoURL string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.VideoURL = videoURL

	out := *room
	return &out, nil
}

func (s *InMemoryRoomStore) SetPlayback(ctx context.Context, code string, playing bool, position float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}

	room.IsPlaying = playing
	room.CurrentTime = position
	return nil
}

func (s *InMemoryRoomStore) AddParticipant(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[p.RoomCode]; !ok {
		return nil, ErrRoomNotFound
	}

	s.joinSeq++
	stored := *p
	stored.JoinOrder = s.joinSeq

	s.participants[p.RoomCode] = append(s.participants[p.RoomCode], &stored)
	s.sessions[p.SessionID] = p.RoomCode

	out := stored
	return &out, nil
}

// Participants returns an insertion-ordered snapshot of the roster,
// empty if the room is unknown.
func (s *InMemoryRoomStore) Participants(ctx context.Context, code string) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotRoster(code), nil
}

func (s *InMemoryRoomStore) RemoveParticipant(ctx context.Context, sessionID string) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrParticipantNotFound
	}

	roster := s.participants[code]
	for i, p := range roster {
		if p.SessionID != sessionID {
			continue
		}
		s.participants[code] = append(roster[:i:i], roster[i+1:]...)
		delete(s.sessions, sessionID)

		out := *p
		return &out, nil
	}

	// Index said the session was here but the roster disagrees; treat
	// as already removed and repair the index.
	delete(s.sessions, sessionID)
	return nil, ErrParticipantNotFound
}

func (s *InMemoryRoomStore) RoomOf(ctx context.Context, sessionID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrParticipantNotFound
	}
	return code, nil
}

// MakeHost flips the host flag on for the named session and off for
// every other member of its room under one write lock, so no reader
// can ever see two hosts or none.
func (s *InMemoryRoomStore) MakeHost(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.sessions[sessionID]
	if !ok {
		return ErrParticipantNotFound
	}

	for _, p := range s.participants[code] {
		p.IsHost = p.SessionID == sessionID
	}
	return nil
}

func (s *InMemoryRoomStore) AddMessage(ctx context.Context, code string, username string, text string) (*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[code]; !ok {
		return nil, ErrRoomNotFound
	}

	msg := domain.NewChatMessage(code, username, text)
	s.messages[code] = append(s.messages[code], msg)

	out := *msg
	return &out, nil
}

func (s *InMemoryRoomStore) Messages(ctx context.Context, code string) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.messages[code]
	out := make([]*domain.ChatMessage, 0, len(history))
	for _, m := range history {
		msg := *m
		out = append(out, &msg)
	}
	return out, nil
}

// snapshotRoster copies the roster; callers must hold at least s.mu.RLock.
func (s *InMemoryRoomStore) snapshotRoster(code string) []*domain.Participant {
	roster := s.participants[code]
	out := make([]*domain.Participant, 0, len(roster))
	for _, p := range roster {
		participant := *p
		out = append(out, &participant)
	}
	return out
}
