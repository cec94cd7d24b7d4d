// Package event defines the outbound events the signaling layer pushes
// to clients. Names are the wire protocol the web clients already speak;
// changing one breaks deployed frontends.
package event

import (
	"encoding/json"

	"mentorlive/domain"
)

type Name string

const (
	YourIDName            Name = "yourID"
	ErrorName             Name = "error"
	TooManyUsersName      Name = "tooManyUsers"
	ConsultationUsersName Name = "consultationUsers"
	RelatedUsersName      Name = "RelatedUsers"
	AllNotesName          Name = "allNotes"
	HeyName               Name = "hey"
	CallAcceptedName      Name = "callAccepted"
	CallEndedName         Name = "callEnded"
	IncomingChangeName    Name = "incomingChange"
)

// Outbound is a server-to-client event. The struct itself is the frame
// payload; the transport wraps it with the event name.
type Outbound interface {
	Event() Name
}

// YourID tells a fresh connection its own session id, the address other
// peers will use to call it.
type YourID struct {
	ID domain.SessionID `json:"id"`
}

func (YourID) Event() Name { return YourIDName }

// Error carries a human-readable precondition diagnostic. The session
// stays connected and may retry.
type Error struct {
	Message string `json:"message"`
}

func (Error) Event() Name { return ErrorName }

// TooManyUsers rejects a third distinct account joining a consultation.
type TooManyUsers struct {
	Consultation domain.ConsultationID `json:"consultationId"`
}

func (TooManyUsers) Event() Name { return TooManyUsersName }

// ConsultationUsers broadcasts the full membership map after a join, so
// both ends learn each other's session id for direct call signaling.
type ConsultationUsers struct {
	Users map[domain.AccountID]domain.SessionID `json:"users"`
}

func (ConsultationUsers) Event() Name { return ConsultationUsersName }

// RelatedUsers broadcasts the membership map that remains after a member
// disconnected.
type RelatedUsers struct {
	Users map[domain.AccountID]domain.SessionID `json:"users"`
}

func (RelatedUsers) Event() Name { return RelatedUsersName }

// AllNotes resynchronizes the full note list, on bootstrap and after
// every append.
type AllNotes struct {
	Notes []json.RawMessage `json:"notes"`
}

func (AllNotes) Event() Name { return AllNotesName }

// Hey delivers a call offer to the callee, verbatim.
type Hey struct {
	Signal json.RawMessage  `json:"signal"`
	From   domain.SessionID `json:"from"`
}

func (Hey) Event() Name { return HeyName }

// CallAccepted delivers the answer back to the caller, verbatim.
type CallAccepted struct {
	Signal json.RawMessage `json:"signal"`
}

func (CallAccepted) Event() Name { return CallAcceptedName }

// CallEnded tells a room member to tear down the media link.
type CallEnded struct{}

func (CallEnded) Event() Name { return CallEndedName }

// IncomingChange is the lightweight "something changed, refetch" signal.
// Only the direct parties of a message get the payload; everyone else
// refetches from the persistence layer.
type IncomingChange struct {
	Message json.RawMessage `json:"message,omitempty"`
}

func (IncomingChange) Event() Name { return IncomingChangeName }
