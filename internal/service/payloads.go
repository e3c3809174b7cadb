package service

// Inbound event payloads. Limits follow the wire contract: room codes
// are exactly six characters, usernames 2-20, chat messages 1-500, and
// video URLs must be absolute.

type joinPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	Username string `json:"username" validate:"required,min=2,max=20"`
}

type messagePayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	Username string `json:"username" validate:"required,min=2,max=20"`
	Message  string `json:"message" validate:"required,min=1,max=500"`
}

type updateVideoPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	VideoURL string `json:"videoUrl" validate:"required,url"`
}

type playbackPayload struct {
	RoomCode    string  `json:"roomCode" validate:"required,len=6"`
	CurrentTime float64 `json:"currentTime" validate:"gte=0"`
}

// relayPayload covers the pure-relay events (like, reaction,
// screenShare, ice-candidate): only the routing field is read, the
// rest of the payload is forwarded untouched.
type relayPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
}

type governancePayload struct {
	RoomCode        string `json:"roomCode" validate:"required,len=6"`
	TargetSessionID string `json:"targetSessionId" validate:"required"`
}
