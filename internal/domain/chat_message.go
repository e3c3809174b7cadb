package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once created. The timestamp is assigned at
// store-receipt time, not taken from the client, so delivery order
// stays consistent with causal order.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	RoomCode  string    `json:"roomCode"`
	Username  string    `json:"username"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChatMessage(roomCode, username, text string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New(),
		RoomCode:  roomCode,
		Username:  username,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}
