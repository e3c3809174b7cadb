package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

func addMember(t *testing.T, store *InMemoryRoomStore, code, username, sessionID string, host bool) *domain.Participant {
	t.Helper()
	p, err := store.AddParticipant(context.Background(), &domain.Participant{
		RoomCode:  code,
		Username:  username,
		SessionID: sessionID,
		IsHost:    host,
		JoinedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return p
}

func TestCreateRoomConflict(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	room, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", room.Code)
	assert.False(t, room.CreatedAt.IsZero())

	_, err = store.CreateRoom(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrRoomCodeExists)
}

func TestGetRoomNotFound(t *testing.T) {
	store := NewInMemoryRoomStore()

	_, err := store.GetRoom(context.Background(), "NOPE42")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSetVideoAndPlayback(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)

	room, err := store.SetVideo(ctx, "ABC123", "https://example.com/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v.mp4", room.VideoURL)

	_, err = store.SetVideo(ctx, "ZZZZZZ", "https://example.com/v.mp4")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	require.NoError(t, store.SetPlayback(ctx, "ABC123", true, 42.5))
	room, err = store.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, room.IsPlaying)
	assert.Equal(t, 42.5, room.CurrentTime)
}

func TestAddParticipantUnknownRoom(t *testing.T) {
	store := NewInMemoryRoomStore()

	_, err := store.AddParticipant(context.Background(), &domain.Participant{
		RoomCode:  "ZZZZZZ",
		Username:  "alice",
		SessionID: "s1",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRosterInsertionOrder(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)

	a := addMember(t, store, "ABC123", "alice", "s1", true)
	b := addMember(t, store, "ABC123", "bob", "s2", false)
	c := addMember(t, store, "ABC123", "carol", "s3", false)

	assert.Less(t, a.JoinOrder, b.JoinOrder)
	assert.Less(t, b.JoinOrder, c.JoinOrder)

	roster, err := store.Participants(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, usernames(roster))

	empty, err := store.Participants(ctx, "ZZZZZZ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRemoveParticipantBySession(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)
	addMember(t, store, "ABC123", "alice", "s1", true)
	addMember(t, store, "ABC123", "bob", "s2", false)

	code, err := store.RoomOf(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)

	removed, err := store.RemoveParticipant(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "bob", removed.Username)
	assert.False(t, removed.IsHost)

	_, err = store.RemoveParticipant(ctx, "s2")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = store.RoomOf(ctx, "s2")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	roster, err := store.Participants(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(roster))
}

func TestMakeHostIsExclusive(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)
	addMember(t, store, "ABC123", "alice", "s1", true)
	addMember(t, store, "ABC123", "bob", "s2", false)
	addMember(t, store, "ABC123", "carol", "s3", false)

	before, err := store.Participants(ctx, "ABC123")
	require.NoError(t, err)

	require.NoError(t, store.MakeHost(ctx, "s3"))

	roster, err := store.Participants(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, hostNames(roster))

	// The snapshot taken before the flip is unaffected.
	assert.Equal(t, []string{"alice"}, hostNames(before))

	assert.ErrorIs(t, store.MakeHost(ctx, "missing"), ErrParticipantNotFound)
}

func TestMessagesOrderedAndServerStamped(t *testing.T) {
	store := NewInMemoryRoomStore()
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ABC123")
	require.NoError(t, err)

	before := time.Now().UTC()
	first, err := store.AddMessage(ctx, "ABC123", "alice", "hi")
	require.NoError(t, err)
	second, err := store.AddMessage(ctx, "ABC123", "bob", "hey")
	require.NoError(t, err)

	assert.False(t, first.Timestamp.Before(before))
	assert.False(t, second.Timestamp.Before(first.Timestamp))
	assert.NotEqual(t, first.ID, second.ID)

	history, err := store.Messages(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Text)
	assert.Equal(t, "hey", history[1].Text)

	_, err = store.AddMessage(ctx, "ZZZZZZ", "alice", "hi")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func usernames(roster []*domain.Participant) []string {
	out := make([]string, 0, len(roster))
	for _, p := range roster {
		out = append(out, p.Username)
	}
	return out
}

func hostNames(roster []*domain.Participant) []string {
	var out []string
	for _, p := range roster {
		if p.IsHost {
			out = append(out, p.Username)
		}
	}
	return out
}
