package domain

import "time"

// Participant is one member of a room. JoinOrder is assigned by the
// store at insert time and is strictly increasing within a room; host
// promotion after a host leaves always picks the lowest remaining one.
type Participant struct {
	RoomCode  string    `json:"roomCode"`
	Username  string    `json:"username"`
	SessionID string    `json:"sessionId"`
	IsHost    bool      `json:"isHost"`
	JoinOrder int64     `json:"-"`
	JoinedAt  time.Time `json:"joinedAt"`
}
