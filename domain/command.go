package domain

import (
	"encoding/json"
)

// Command is the closed set of inbound intents the coordinator handles.
// Each command carries the session it originated from; the transport is
// the only producer.
type Command interface {
	Origin() SessionID
}

// ConnectCommand is produced by the transport when a socket opens,
// before the client has sent anything.
type ConnectCommand struct {
	From SessionID
}

func (c ConnectCommand) Origin() SessionID { return c.From }

// DisconnectCommand triggers the full cleanup cascade. It is the only
// cancellation primitive in the signaling layer.
type DisconnectCommand struct {
	From SessionID
}

func (c DisconnectCommand) Origin() SessionID { return c.From }

// InitCommand binds the session to an account and optionally attaches it
// to a consultation room or a batch of chat subscriptions. Every field is
// optional on the wire; the coordinator decides which branch applies.
type InitCommand struct {
	From         SessionID
	Account      AccountID
	Consultation ConsultationID
	Chats        []ChatID
}

func (c InitCommand) Origin() SessionID { return c.From }

// CallUserCommand asks the server to relay an opaque signaling offer to
// another session.
type CallUserCommand struct {
	From   SessionID
	Target SessionID
	Signal json.RawMessage
	Caller SessionID
}

func (c CallUserCommand) Origin() SessionID { return c.From }

// AcceptCallCommand relays the answer half of the signaling exchange.
type AcceptCallCommand struct {
	From   SessionID
	To     SessionID
	Signal json.RawMessage
}

func (c AcceptCallCommand) Origin() SessionID { return c.From }

// EndCallCommand tells every session in the consultation to tear down the
// media link. Room membership is untouched.
type EndCallCommand struct {
	From         SessionID
	Consultation ConsultationID
}

func (c EndCallCommand) Origin() SessionID { return c.From }

// AddNoteCommand appends an opaque note to the consultation's shared list.
type AddNoteCommand struct {
	From         SessionID
	Consultation ConsultationID
	Note         json.RawMessage
}

func (c AddNoteCommand) Origin() SessionID { return c.From }

// ChatMessage is the slice of the persisted message object the
// coordinator needs for routing. Raw keeps the full object so direct
// parties receive it verbatim.
type ChatMessage struct {
	Sender   AccountID `json:"senderId"`
	Receiver AccountID `json:"receiverId"`
	Chat     ChatID    `json:"chatId"`
	Raw      json.RawMessage `json:"-"`
}

// ChatMessageCommand covers the newChat and newMessage events: a 1:1
// message was persisted upstream and live parties should hear about it.
type ChatMessageCommand struct {
	From    SessionID
	Message ChatMessage
	Chat    ChatID
}

func (c ChatMessageCommand) Origin() SessionID { return c.From }

// ChatID resolves the chat the message belongs to, preferring the
// explicit field over the one embedded in the message.
func (c ChatMessageCommand) ChatID() ChatID {
	if c.Chat != "" {
		return c.Chat
	}
	return c.Message.Chat
}

// NewChatGroupCommand registers a participant's live session with a
// freshly created group chat.
type NewChatGroupCommand struct {
	From    SessionID
	Chat    ChatID
	Account AccountID
}

func (c NewChatGroupCommand) Origin() SessionID { return c.From }

// NewMemberCommand registers an added member's session and lets existing
// subscribers know the roster changed.
type NewMemberCommand struct {
	From    SessionID
	Chat    ChatID
	Account AccountID
}

func (c NewMemberCommand) Origin() SessionID { return c.From }

// GroupMessageCommand fans a persisted group message out to the listed
// participants and the chat's subscribers.
type GroupMessageCommand struct {
	From    SessionID
	Message ChatMessage
	Users   []AccountID
}

func (c GroupMessageCommand) Origin() SessionID { return c.From }

// InspectCommand requests a state snapshot through the dispatch loop so
// readers never touch the live tables. The reply channel must be buffered.
type InspectCommand struct {
	Reply chan Snapshot
}

func (c InspectCommand) Origin() SessionID { return "" }
