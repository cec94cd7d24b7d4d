package domain

import (
	"encoding/json"
)

// MaxSeats caps a consultation room at one mentor and one learner.
// A third distinct account is rejected, never queued.
const MaxSeats = 2

// ConsultationRoom is the ephemeral pairing tied to one scheduled
// consultation: who is attached right now, plus the notes shared during
// the room's lifetime. Notes die with the room.
type ConsultationRoom struct {
	ID      ConsultationID
	Members map[AccountID]SessionID
	Notes   []json.RawMessage
}

func NewConsultationRoom(id ConsultationID) *ConsultationRoom {
	return &ConsultationRoom{
		ID:      id,
		Members: make(map[AccountID]SessionID),
	}
}

// Join records the account's current session. Rebinding an account that is
// already seated (a refreshed client) replaces its session in place and
// returns the session that got replaced.
func (r *ConsultationRoom) Join(account AccountID, session SessionID) (SessionID, bool) {
	previous, rebound := r.Members[account]
	r.Members[account] = session
	return previous, rebound && previous != session
}

// Leave removes the member entry owned by the given session.
// Removing an unknown session is a no-op.
func (r *ConsultationRoom) Leave(session SessionID) (AccountID, bool) {
	for account, sid := range r.Members {
		if sid == session {
			delete(r.Members, account)
			return account, true
		}
	}
	return "", false
}

// Evict rolls a just-admitted account back out of the room.
func (r *ConsultationRoom) Evict(account AccountID) {
	delete(r.Members, account)
}

func (r *ConsultationRoom) Empty() bool {
	return len(r.Members) == 0
}

// Bootstrap guarantees the notes list exists so later appends are valid.
// Idempotent for rejoining members.
func (r *ConsultationRoom) Bootstrap() {
	if r.Notes == nil {
		r.Notes = make([]json.RawMessage, 0)
	}
}

// AddNote appends in arrival order. Notes carry no server-assigned
// identity and cannot be edited or deleted. Returns false when the room
// was never bootstrapped, in which case the note is dropped.
func (r *ConsultationRoom) AddNote(note json.RawMessage) bool {
	if r.Notes == nil {
		return false
	}
	r.Notes = append(r.Notes, note)
	return true
}

// Sessions lists the session ids currently seated in the room.
func (r *ConsultationRoom) Sessions() []SessionID {
	sessions := make([]SessionID, 0, len(r.Members))
	for _, sid := range r.Members {
		sessions = append(sessions, sid)
	}
	return sessions
}

// MembersView copies the membership map so broadcasts never alias the
// room's internal state.
func (r *ConsultationRoom) MembersView() map[AccountID]SessionID {
	view := make(map[AccountID]SessionID, len(r.Members))
	for account, sid := range r.Members {
		view[account] = sid
	}
	return view
}
