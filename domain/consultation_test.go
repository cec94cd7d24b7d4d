package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsultationRoom_Join_NewAccount(t *testing.T) {
	req := require.New(t)
	room := NewConsultationRoom("c1")

	// When an account takes a seat
	replaced, rebound := room.Join("mentor", "s1")

	// Then no previous session was displaced
	req.False(rebound)
	req.Empty(replaced)
	req.Equal(SessionID("s1"), room.Members["mentor"])
}

func TestConsultationRoom_Join_SameAccountRebinds(t *testing.T) {
	req := require.New(t)
	room := NewConsultationRoom("c1")
	room.Join("mentor", "s1")

	// When the same account joins from a new session
	replaced, rebound := room.Join("mentor", "s2")

	// Then the old session is reported and the seat count is unchanged
	req.True(rebound)
	req.Equal(SessionID("s1"), replaced)
	req.Len(room.Members, 1)

	// And rejoining with the identical session is not a rebind
	_, rebound = room.Join("mentor", "s2")
	req.False(rebound)
}

func TestConsultationRoom_Leave_BySession(t *testing.T) {
	req := require.New(t)
	room := NewConsultationRoom("c1")
	room.Join("mentor", "s1")
	room.Join("learner", "s2")

	// When a session leaves
	account, ok := room.Leave("s1")

	// Then its seat is freed
	req.True(ok)
	req.Equal(AccountID("mentor"), account)
	req.Len(room.Members, 1)
	req.False(room.Empty())

	// And leaving with an unknown session changes nothing
	_, ok = room.Leave("ghost")
	req.False(ok)

	room.Leave("s2")
	req.True(room.Empty())
}

func TestConsultationRoom_Notes_RequireBootstrap(t *testing.T) {
	req := require.New(t)
	room := NewConsultationRoom("c1")
	note := json.RawMessage(`{"text":"n1"}`)

	// When a note arrives before the room was bootstrapped
	req.False(room.AddNote(note))
	req.Nil(room.Notes)

	// When the room is bootstrapped, appends work and keep order
	room.Bootstrap()
	req.True(room.AddNote(note))
	req.True(room.AddNote(json.RawMessage(`{"text":"n2"}`)))
	req.Len(room.Notes, 2)
	req.Equal(note, room.Notes[0])

	// And bootstrapping again does not wipe them
	room.Bootstrap()
	req.Len(room.Notes, 2)
}

func TestConsultationRoom_MembersView_IsACopy(t *testing.T) {
	req := require.New(t)
	room := NewConsultationRoom("c1")
	room.Join("mentor", "s1")

	view := room.MembersView()
	view["mentor"] = "tampered"

	req.Equal(SessionID("s1"), room.Members["mentor"])
	req.ElementsMatch([]SessionID{"s1"}, room.Sessions())
}
