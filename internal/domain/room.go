package domain

import (
	"time"
)

const CodeLength = 6

// Room is a shared watch session identified by its invite code.
// The playback fields carry the last-known video state: clients
// reconcile against them with a local threshold, the server never
// arbitrates conflicting concurrent updates.
type Room struct {
	Code        string    `json:"roomCode"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	IsPlaying   bool      `json:"isPlaying"`
	CurrentTime float64   `json:"currentTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewRoom(code string) *Room {
	return &Room{
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
}
