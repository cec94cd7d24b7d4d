package runtime

// The paired index tables of the coordinator (account <-> session,
// chat <-> sessions) are kept consistent by construction: every mutation
// goes through one of these structures and updates both directions in the
// same call. No mutex here; the dispatch loop is the single writer.

// Bimap is a one-to-one bidirectional mapping where the latest Put wins
// on both sides: binding an account to a new session unbinds the stale
// session, and vice versa.
type Bimap[A comparable, B comparable] struct {
	forward map[A]B
	reverse map[B]A
}

func NewBimap[A comparable, B comparable]() *Bimap[A, B] {
	return &Bimap[A, B]{
		forward: make(map[A]B),
		reverse: make(map[B]A),
	}
}

func (m *Bimap[A, B]) Put(a A, b B) {
	if stale, ok := m.forward[a]; ok {
		delete(m.reverse, stale)
	}
	if stale, ok := m.reverse[b]; ok {
		delete(m.forward, stale)
	}
	m.forward[a] = b
	m.reverse[b] = a
}

func (m *Bimap[A, B]) ByA(a A) (B, bool) {
	b, ok := m.forward[a]
	return b, ok
}

func (m *Bimap[A, B]) ByB(b B) (A, bool) {
	a, ok := m.reverse[b]
	return a, ok
}

// DeleteByB unbinds the pair owned by b. A stale b (already overwritten
// by a later Put) removes nothing.
func (m *Bimap[A, B]) DeleteByB(b B) {
	a, ok := m.reverse[b]
	if !ok {
		return
	}
	delete(m.reverse, b)
	delete(m.forward, a)
}

func (m *Bimap[A, B]) Len() int {
	return len(m.forward)
}

// Multimap is a many-to-many mapping with set semantics: adding an
// existing pair is a no-op, which makes repeated chat subscriptions
// idempotent instead of accumulating duplicate deliveries.
type Multimap[A comparable, B comparable] struct {
	forward map[A]map[B]struct{}
	reverse map[B]map[A]struct{}
}

func NewMultimap[A comparable, B comparable]() *Multimap[A, B] {
	return &Multimap[A, B]{
		forward: make(map[A]map[B]struct{}),
		reverse: make(map[B]map[A]struct{}),
	}
}

func (m *Multimap[A, B]) Add(a A, b B) {
	if _, ok := m.forward[a]; !ok {
		m.forward[a] = make(map[B]struct{})
	}
	if _, ok := m.reverse[b]; !ok {
		m.reverse[b] = make(map[A]struct{})
	}
	m.forward[a][b] = struct{}{}
	m.reverse[b][a] = struct{}{}
}

func (m *Multimap[A, B]) ByA(a A) []B {
	set, ok := m.forward[a]
	if !ok {
		return nil
	}
	values := make([]B, 0, len(set))
	for b := range set {
		values = append(values, b)
	}
	return values
}

func (m *Multimap[A, B]) ByB(b B) []A {
	set, ok := m.reverse[b]
	if !ok {
		return nil
	}
	values := make([]A, 0, len(set))
	for a := range set {
		values = append(values, a)
	}
	return values
}

// RemoveByB drops every pair involving b and returns the As it was linked
// to. Empty sets are pruned on both sides so dead chats do not leak.
func (m *Multimap[A, B]) RemoveByB(b B) []A {
	set, ok := m.reverse[b]
	if !ok {
		return nil
	}
	removed := make([]A, 0, len(set))
	for a := range set {
		removed = append(removed, a)
		delete(m.forward[a], b)
		if len(m.forward[a]) == 0 {
			delete(m.forward, a)
		}
	}
	delete(m.reverse, b)
	return removed
}

// Keys lists the A side entries that currently have at least one pair.
func (m *Multimap[A, B]) Keys() []A {
	keys := make([]A, 0, len(m.forward))
	for a := range m.forward {
		keys = append(keys, a)
	}
	return keys
}

func (m *Multimap[A, B]) LenA() int {
	return len(m.forward)
}
