package domain

import "encoding/json"

// Wire event types, identical in both directions.
const (
	TypeJoin         = "join"
	TypeLeave        = "leave"
	TypeMessage      = "message"
	TypeSync         = "sync"
	TypeUpdateVideo  = "updateVideo"
	TypePlay         = "play"
	TypePause        = "pause"
	TypeSeek         = "seek"
	TypeLike         = "like"
	TypeReaction     = "reaction"
	TypeKick         = "kick"
	TypeKicked       = "kicked"
	TypeTransferHost = "transferHost"
	TypeScreenShare  = "screenShare"
	TypeICECandidate = "ice-candidate"
	TypeSession      = "session"
	TypeError        = "error"
)

// Envelope is the wire frame sent to clients.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// InboundEnvelope keeps the payload raw until the event type is known,
// so relay-only events (screenShare, ice-candidate) are forwarded
// byte-for-byte without interpretation.
type InboundEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Forward re-wraps an inbound frame for broadcast without touching the
// payload bytes.
func (e InboundEnvelope) Forward() Envelope {
	return Envelope{Type: e.Type, Payload: e.Payload}
}

type SessionPayload struct {
	SessionID string `json:"sessionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinPayload struct {
	Username     string         `json:"username"`
	SessionID    string         `json:"sessionId"`
	IsHost       bool           `json:"isHost"`
	Participants []*Participant `json:"participants"`
}

type SyncPayload struct {
	VideoURL     string         `json:"videoUrl"`
	IsPlaying    bool           `json:"isPlaying"`
	CurrentTime  float64        `json:"currentTime"`
	Participants []*Participant `json:"participants"`
	Messages     []*ChatMessage `json:"messages"`
}

type LeavePayload struct {
	SessionID    string         `json:"sessionId"`
	Username     string         `json:"username"`
	WasHost      bool           `json:"wasHost"`
	Participants []*Participant `json:"participants"`
}

type UpdateVideoPayload struct {
	RoomCode string `json:"roomCode"`
	VideoURL string `json:"videoUrl"`
}

type KickPayload struct {
	RoomCode     string         `json:"roomCode"`
	KickedUser   string         `json:"kickedUser"`
	Participants []*Participant `json:"participants"`
}

type KickedPayload struct {
	Message string `json:"message"`
}

type TransferHostPayload struct {
	RoomCode        string         `json:"roomCode"`
	NewHostUsername string         `json:"newHostUsername"`
	PreviousHost    string         `json:"previousHost,omitempty"`
	Participants    []*Participant `json:"participants"`
}
