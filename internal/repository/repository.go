package repository

import (
	"context"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

// RoomStore holds rooms, rosters and chat history for the lifetime of
// the process. Implementations must resolve RemoveParticipant and
// RoomOf through a direct session index, not a scan.
type RoomStore interface {
	CreateRoom(ctx context.Context, code string) (*domain.Room, error)
	GetRoom(ctx context.Context, code string) (*domain.Room, error)
	SetVideo(ctx context.Context, code string, videoURL string) (*domain.Room, error)
	SetPlayback(ctx context.Context, code string, playing bool, position float64) error

	AddParticipant(ctx context.Context, p *domain.Participant) (*domain.Participant, error)
	Participants(ctx context.Context, code string) ([]*domain.Participant, error)
	RemoveParticipant(ctx context.Context, sessionID string) (*domain.Participant, error)
	RoomOf(ctx context.Context, sessionID string) (string, error)
	MakeHost(ctx context.Context, sessionID string) error

	AddMessage(ctx context.Context, code string, username string, text string) (*domain.ChatMessage, error)
	Messages(ctx context.Context, code string) ([]*domain.ChatMessage, error)
}
