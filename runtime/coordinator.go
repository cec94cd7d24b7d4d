// Package runtime owns the ephemeral state of the signaling layer and
// routes events between connected sessions. It holds no business rules
// about courses or contracts; accounts and chat ids are trusted inputs.
package runtime

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"mentorlive/contract"
	"mentorlive/domain"
	"mentorlive/domain/event"
)

// Coordinator owns every index table between live sessions and logical
// entities: account bindings, consultation rooms with their shared notes,
// and chat subscriptions. All state lives in memory for the lifetime of
// the process and is mutated exclusively from the dispatch loop, so the
// struct carries no lock. Absent entries are treated as no-ops everywhere;
// nothing in here may panic on a stale or duplicate command.
type Coordinator struct {
	log         *slog.Logger
	emitter     contract.Emitter
	sessions    map[domain.SessionID]*domain.Session
	accounts    *Bimap[domain.AccountID, domain.SessionID]
	rooms       map[domain.ConsultationID]*domain.ConsultationRoom
	sessionRoom map[domain.SessionID]domain.ConsultationID
	chats       *Multimap[domain.ChatID, domain.SessionID]
}

func NewCoordinator(log *slog.Logger, emitter contract.Emitter) *Coordinator {
	return &Coordinator{
		log:         log,
		emitter:     emitter,
		sessions:    make(map[domain.SessionID]*domain.Session),
		accounts:    NewBimap[domain.AccountID, domain.SessionID](),
		rooms:       make(map[domain.ConsultationID]*domain.ConsultationRoom),
		sessionRoom: make(map[domain.SessionID]domain.ConsultationID),
		chats:       NewMultimap[domain.ChatID, domain.SessionID](),
	}
}

// Handle runs one command to completion. The dispatcher guarantees
// commands never interleave, which is what keeps the paired indexes
// consistent without locking.
func (c *Coordinator) Handle(cmd domain.Command) {
	switch v := cmd.(type) {
	case domain.ConnectCommand:
		c.handleConnect(v)
	case domain.DisconnectCommand:
		c.handleDisconnect(v)
	case domain.InitCommand:
		c.handleInit(v)
	case domain.CallUserCommand:
		c.emitter.Emit(v.Target, event.Hey{Signal: v.Signal, From: v.Caller})
	case domain.AcceptCallCommand:
		c.emitter.Emit(v.To, event.CallAccepted{Signal: v.Signal})
	case domain.EndCallCommand:
		c.handleEndCall(v)
	case domain.AddNoteCommand:
		c.handleAddNote(v)
	case domain.ChatMessageCommand:
		c.handleChatMessage(v)
	case domain.NewChatGroupCommand:
		c.subscribeAccount(v.Account, v.Chat)
	case domain.NewMemberCommand:
		c.handleNewMember(v)
	case domain.GroupMessageCommand:
		c.handleGroupMessage(v)
	case domain.InspectCommand:
		c.handleInspect(v)
	default:
		c.log.Debug(fmt.Sprintf("Unhandled command %T", cmd))
	}
}

func (c *Coordinator) handleConnect(cmd domain.ConnectCommand) {
	c.sessions[cmd.From] = domain.NewSession(cmd.From)
	c.emitter.Emit(cmd.From, event.YourID{ID: cmd.From})
}

// handleInit binds the session's identity, then follows exactly one
// branch: join a consultation, subscribe to chats, or report which
// precondition failed. The error branch is diagnostic messaging, not
// authorization; the session stays connected and can retry.
func (c *Coordinator) handleInit(cmd domain.InitCommand) {
	if cmd.Account != "" {
		c.accounts.Put(cmd.Account, cmd.From)
		if session, ok := c.sessions[cmd.From]; ok {
			session.Account = cmd.Account
		}
	}

	switch {
	case cmd.Account != "" && cmd.Consultation != "":
		if c.joinConsultation(cmd.From, cmd.Consultation, cmd.Account) {
			c.bootstrapNotes(cmd.Consultation)
		}
	case len(cmd.Chats) > 0:
		for _, chat := range cmd.Chats {
			c.chats.Add(chat, cmd.From)
		}
	case cmd.Consultation == "":
		c.emitter.Emit(cmd.From, event.Error{Message: "no existing consultation"})
	default:
		c.emitter.Emit(cmd.From, event.Error{Message: "user not logged in"})
	}
}

// joinConsultation admits the session into the room, or rolls the join
// back and reports tooManyUsers when a third distinct account shows up.
// Reports whether the session ended up seated.
func (c *Coordinator) joinConsultation(sid domain.SessionID, cid domain.ConsultationID, account domain.AccountID) bool {
	// A session sits in at most one room. Switching rooms without a
	// reconnect leaves the previous one first, with the same cleanup a
	// disconnect would do.
	if previous, ok := c.sessionRoom[sid]; ok && previous != cid {
		c.leaveConsultation(sid)
	}

	room, ok := c.rooms[cid]
	if !ok {
		room = domain.NewConsultationRoom(cid)
		c.rooms[cid] = room
	}

	replaced, rebound := room.Join(account, sid)
	c.sessionRoom[sid] = cid
	if rebound {
		// Same account rejoined from a fresh socket (page refresh).
		// The stale session no longer owns a seat.
		delete(c.sessionRoom, replaced)
	}

	if len(room.Members) > domain.MaxSeats {
		room.Evict(account)
		delete(c.sessionRoom, sid)
		c.emitter.Emit(sid, event.TooManyUsers{Consultation: cid})
		c.log.Info("Consultation room full, join rejected",
			"consultation", cid, "account", account)
		return false
	}

	c.broadcast(room.Sessions(), event.ConsultationUsers{Users: room.MembersView()})
	return true
}

// bootstrapNotes initializes the note list if needed and resynchronizes
// every member, including ones that just refreshed.
func (c *Coordinator) bootstrapNotes(cid domain.ConsultationID) {
	room, ok := c.rooms[cid]
	if !ok {
		return
	}
	room.Bootstrap()
	c.broadcast(room.Sessions(), event.AllNotes{Notes: room.Notes})
}

func (c *Coordinator) handleAddNote(cmd domain.AddNoteCommand) {
	room, ok := c.rooms[cmd.Consultation]
	if !ok {
		// Room already torn down, or never bootstrapped. Dropped on purpose.
		return
	}
	if !room.AddNote(cmd.Note) {
		return
	}
	c.broadcast(room.Sessions(), event.AllNotes{Notes: room.Notes})
}

func (c *Coordinator) handleEndCall(cmd domain.EndCallCommand) {
	room, ok := c.rooms[cmd.Consultation]
	if !ok {
		return
	}
	// Membership is untouched: this only tells the media layer to hang up.
	c.broadcast(room.Sessions(), event.CallEnded{})
}

// handleDisconnect is the cleanup cascade: consultation seat, chat
// subscriptions, account binding, then the session itself. Every step
// tolerates entries that are already gone, so a double disconnect is
// harmless.
func (c *Coordinator) handleDisconnect(cmd domain.DisconnectCommand) {
	c.leaveConsultation(cmd.From)
	c.chats.RemoveByB(cmd.From)
	c.accounts.DeleteByB(cmd.From)
	delete(c.sessions, cmd.From)
}

// leaveConsultation frees the session's seat and tells the remaining
// members who is left. An empty room is deleted outright, which is also
// what discards its notes.
func (c *Coordinator) leaveConsultation(sid domain.SessionID) {
	cid, ok := c.sessionRoom[sid]
	if !ok {
		return
	}
	delete(c.sessionRoom, sid)

	room, ok := c.rooms[cid]
	if !ok {
		return
	}
	room.Leave(sid)
	if room.Empty() {
		delete(c.rooms, cid)
		return
	}
	c.broadcast(room.Sessions(), event.RelatedUsers{Users: room.MembersView()})
}

// handleChatMessage notifies the live parties of a freshly persisted 1:1
// message. Sender and receiver get the message itself; other subscribers
// of the chat only get told to refetch.
func (c *Coordinator) handleChatMessage(cmd domain.ChatMessageCommand) {
	direct := c.resolveSessions(cmd.Message.Sender, cmd.Message.Receiver)
	c.fanout(direct, c.chats.ByA(cmd.ChatID()), cmd.Message.Raw)
}

func (c *Coordinator) handleNewMember(cmd domain.NewMemberCommand) {
	c.subscribeAccount(cmd.Account, cmd.Chat)
	c.fanout(nil, c.chats.ByA(cmd.Chat), nil)
}

func (c *Coordinator) handleGroupMessage(cmd domain.GroupMessageCommand) {
	direct := c.resolveSessions(cmd.Users...)
	c.fanout(direct, c.chats.ByA(cmd.Message.Chat), cmd.Message.Raw)
}

// subscribeAccount attaches an account's live session to a chat. Accounts
// without a live session are skipped; they will subscribe on their next
// init.
func (c *Coordinator) subscribeAccount(account domain.AccountID, chat domain.ChatID) {
	if account == "" || chat == "" {
		return
	}
	if sid, ok := c.accounts.ByA(account); ok {
		c.chats.Add(chat, sid)
	}
}

// resolveSessions maps account ids to their live sessions, dropping
// accounts that are offline.
func (c *Coordinator) resolveSessions(accounts ...domain.AccountID) []domain.SessionID {
	return lo.FilterMap(accounts, func(account domain.AccountID, _ int) (domain.SessionID, bool) {
		if account == "" {
			return "", false
		}
		return c.accounts.ByA(account)
	})
}

// fanout emits incomingChange with the message to the direct parties and
// without it to the remaining subscribers.
func (c *Coordinator) fanout(direct []domain.SessionID, subscribers []domain.SessionID, message []byte) {
	direct = lo.Uniq(direct)
	for _, sid := range direct {
		c.emitter.Emit(sid, event.IncomingChange{Message: message})
	}
	for _, sid := range lo.Without(subscribers, direct...) {
		c.emitter.Emit(sid, event.IncomingChange{})
	}
}

func (c *Coordinator) broadcast(sessions []domain.SessionID, evt event.Outbound) {
	for _, sid := range sessions {
		c.emitter.Emit(sid, evt)
	}
}

func (c *Coordinator) handleInspect(cmd domain.InspectCommand) {
	snapshot := domain.Snapshot{
		Sessions:      len(c.sessions),
		BoundAccounts: c.accounts.Len(),
		Rooms: lo.MapToSlice(c.rooms, func(cid domain.ConsultationID, room *domain.ConsultationRoom) domain.RoomStatus {
			return domain.RoomStatus{ID: cid, Members: room.MembersView(), Notes: len(room.Notes)}
		}),
	}
	for _, chat := range c.chats.Keys() {
		snapshot.Chats = append(snapshot.Chats, domain.ChatStatus{
			ID:          chat,
			Subscribers: len(c.chats.ByA(chat)),
		})
	}

	select {
	case cmd.Reply <- snapshot:
	default:
		// Inspector went away; nobody blocks on its behalf.
	}
}
