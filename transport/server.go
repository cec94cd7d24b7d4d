// Package transport exposes the signaling protocol over WebSocket.
// One goroutine per connection decodes inbound frames into typed commands
// for the dispatcher; a registry of peers carries events back out. The
// coordinator never sees a socket.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/net/websocket"

	"mentorlive/contract"
	"mentorlive/domain"
)

// A client sending garbage gets a small allowance before the connection
// is closed; a single bad frame should not kill a flaky mobile client.
const maxDecodeErrorsPerConn = 3

type Server struct {
	log        *slog.Logger
	registry   *Registry
	dispatcher contract.IDispatcher
	bufferSize int
}

func NewServer(log *slog.Logger, registry *Registry,
	dispatcher contract.IDispatcher, connectionBufferSize int) *Server {
	return &Server{
		log:        log,
		registry:   registry,
		dispatcher: dispatcher,
		bufferSize: connectionBufferSize,
	}
}

// Handler serves /ws for the signaling protocol and /up for liveness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/ws", websocket.Handler(s.handleConn))
	return mux
}

func (s *Server) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	sid := domain.SessionID(uuid.NewString())
	p := newPeer(sid, s.bufferSize)
	s.registry.add(p)
	go p.writeLoop(s.log, json.NewEncoder(conn))

	defer func() {
		// Remove the peer first: once the disconnect cascade runs,
		// emits aimed at this session must already be no-ops.
		s.registry.remove(sid)
		s.dispatcher.Dispatch(domain.DisconnectCommand{From: sid})
	}()

	s.dispatcher.Dispatch(domain.ConnectCommand{From: sid})

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var f frame
		if err := decoder.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrorsPerConn {
				s.log.Debug("Closing connection after repeated bad frames",
					"session", sid)
				return
			}
			continue
		}
		decodeErrors = 0

		cmd, ok := s.decodeCommand(sid, f)
		if !ok {
			continue
		}
		s.dispatcher.Dispatch(cmd)
	}
}

type initPayload struct {
	AccountID      string   `json:"accountId"`
	ConsultationID string   `json:"consultationId"`
	ChatIDs        []string `json:"chatIds"`
}

type callUserPayload struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
}

type acceptCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

type endCallPayload struct {
	ConsultationID string `json:"consultationId"`
}

type addNotePayload struct {
	ConsultationID string          `json:"consultationId"`
	NewNote        json.RawMessage `json:"newNote"`
}

type chatMessagePayload struct {
	SentMessage json.RawMessage `json:"sentMessage"`
	ChatID      string          `json:"chatId"`
}

type chatMemberRef struct {
	ChatID    string `json:"chatId"`
	AccountID string `json:"accountId"`
}

type newChatGroupPayload struct {
	GroupChat chatMemberRef `json:"groupChat"`
}

type newMemberPayload struct {
	UserAdded chatMemberRef `json:"userAdded"`
}

type groupMessagePayload struct {
	SentMessage json.RawMessage `json:"sentMessage"`
	Users       []string        `json:"users"`
}

// decodeCommand turns a wire frame into a typed command. Unknown events
// and undecodable payloads are skipped; per protocol contract, field
// content is not validated here — handlers degrade to no-ops instead.
func (s *Server) decodeCommand(sid domain.SessionID, f frame) (domain.Command, bool) {
	switch f.Event {
	case "init":
		var p initPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.InitCommand{
			From:         sid,
			Account:      domain.AccountID(p.AccountID),
			Consultation: domain.ConsultationID(p.ConsultationID),
			Chats: lo.Map(p.ChatIDs, func(id string, _ int) domain.ChatID {
				return domain.ChatID(id)
			}),
		}, true

	case "callUser":
		var p callUserPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.CallUserCommand{
			From:   sid,
			Target: domain.SessionID(p.UserToCall),
			Signal: p.SignalData,
			Caller: domain.SessionID(p.From),
		}, true

	case "acceptCall":
		var p acceptCallPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.AcceptCallCommand{
			From:   sid,
			To:     domain.SessionID(p.To),
			Signal: p.Signal,
		}, true

	case "endCall":
		var p endCallPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.EndCallCommand{
			From:         sid,
			Consultation: domain.ConsultationID(p.ConsultationID),
		}, true

	case "addNote":
		var p addNotePayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.AddNoteCommand{
			From:         sid,
			Consultation: domain.ConsultationID(p.ConsultationID),
			Note:         p.NewNote,
		}, true

	case "newChat", "newMessage":
		var p chatMessagePayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.ChatMessageCommand{
			From:    sid,
			Message: decodeChatMessage(p.SentMessage),
			Chat:    domain.ChatID(p.ChatID),
		}, true

	case "newChatGroup":
		var p newChatGroupPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.NewChatGroupCommand{
			From:    sid,
			Chat:    domain.ChatID(p.GroupChat.ChatID),
			Account: domain.AccountID(p.GroupChat.AccountID),
		}, true

	case "newMember":
		var p newMemberPayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.NewMemberCommand{
			From:    sid,
			Chat:    domain.ChatID(p.UserAdded.ChatID),
			Account: domain.AccountID(p.UserAdded.AccountID),
		}, true

	case "newGroupMessage":
		var p groupMessagePayload
		if !s.unmarshal(f, &p) {
			return nil, false
		}
		return domain.GroupMessageCommand{
			From:    sid,
			Message: decodeChatMessage(p.SentMessage),
			Users: lo.Map(p.Users, func(id string, _ int) domain.AccountID {
				return domain.AccountID(id)
			}),
		}, true

	default:
		s.log.Debug("Unknown inbound event ignored",
			"session", sid, "event", f.Event)
		return nil, false
	}
}

func (s *Server) unmarshal(f frame, target any) bool {
	if len(f.Payload) == 0 {
		// Handlers treat zero values as absent fields.
		return true
	}
	if err := json.Unmarshal(f.Payload, target); err != nil {
		s.log.Debug("Undecodable payload skipped",
			"event", f.Event, "error", err)
		return false
	}
	return true
}

// decodeChatMessage lifts the routing fields out of the persisted message
// object while keeping the original bytes for verbatim delivery.
func decodeChatMessage(raw json.RawMessage) domain.ChatMessage {
	var msg domain.ChatMessage
	if len(raw) > 0 {
		// Routing fields are best-effort; an unreadable message still
		// gets relayed to whoever can be resolved.
		_ = json.Unmarshal(raw, &msg)
		msg.Raw = raw
	}
	return msg
}
