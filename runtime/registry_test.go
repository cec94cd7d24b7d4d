package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBimap_Put_LatestWinsOnBothSides(t *testing.T) {
	req := require.New(t)
	m := NewBimap[string, string]()

	// Given an existing pair
	m.Put("alice", "s1")

	// When the same account binds a new session
	m.Put("alice", "s2")

	// Then the stale session is unbound
	_, ok := m.ByB("s1")
	req.False(ok)
	sid, ok := m.ByA("alice")
	req.True(ok)
	req.Equal("s2", sid)
	req.Equal(1, m.Len())

	// When another account steals that session
	m.Put("bob", "s2")

	// Then alice lost her binding too
	_, ok = m.ByA("alice")
	req.False(ok)
	account, ok := m.ByB("s2")
	req.True(ok)
	req.Equal("bob", account)
	req.Equal(1, m.Len())
}

func TestBimap_DeleteByB_RemovesPair(t *testing.T) {
	req := require.New(t)
	m := NewBimap[string, string]()
	m.Put("alice", "s1")

	// When the session side is deleted
	m.DeleteByB("s1")

	// Then both directions are empty
	_, ok := m.ByA("alice")
	req.False(ok)
	_, ok = m.ByB("s1")
	req.False(ok)
	req.Zero(m.Len())

	// And deleting again is a no-op
	req.NotPanics(func() { m.DeleteByB("s1") })
}

func TestBimap_DeleteByB_StaleSessionRemovesNothing(t *testing.T) {
	req := require.New(t)
	m := NewBimap[string, string]()

	// Given alice moved from s1 to s2
	m.Put("alice", "s1")
	m.Put("alice", "s2")

	// When the old session's cleanup fires late
	m.DeleteByB("s1")

	// Then the fresh binding survives
	sid, ok := m.ByA("alice")
	req.True(ok)
	req.Equal("s2", sid)
}

func TestMultimap_Add_IsIdempotent(t *testing.T) {
	req := require.New(t)
	m := NewMultimap[string, string]()

	// When the same pair is added twice
	m.Add("chat1", "s1")
	m.Add("chat1", "s1")
	m.Add("chat1", "s2")

	// Then the pair exists once
	req.ElementsMatch([]string{"s1", "s2"}, m.ByA("chat1"))
	req.Equal([]string{"chat1"}, m.ByB("s1"))
	req.Equal(1, m.LenA())
}

func TestMultimap_RemoveByB_PrunesEmptySets(t *testing.T) {
	req := require.New(t)
	m := NewMultimap[string, string]()
	m.Add("chat1", "s1")
	m.Add("chat1", "s2")
	m.Add("chat2", "s1")

	// When s1 goes away
	removed := m.RemoveByB("s1")

	// Then its chats are reported and chat2, now empty, is pruned
	req.ElementsMatch([]string{"chat1", "chat2"}, removed)
	req.Equal([]string{"s2"}, m.ByA("chat1"))
	req.Nil(m.ByA("chat2"))
	req.Equal([]string{"chat1"}, m.Keys())

	// And removing an unknown entry yields nothing
	req.Nil(m.RemoveByB("ghost"))
}

func TestMultimap_ByA_UnknownKeyIsNil(t *testing.T) {
	req := require.New(t)
	m := NewMultimap[string, string]()

	req.Nil(m.ByA("nope"))
	req.Nil(m.ByB("nope"))
	req.Zero(m.LenA())
}
