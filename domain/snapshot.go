package domain

// Snapshot is a point-in-time copy of the coordinator's state tables,
// built inside the dispatch loop and handed out for inspection. It never
// shares memory with the live tables.
type Snapshot struct {
	Sessions      int
	BoundAccounts int
	Rooms         []RoomStatus
	Chats         []ChatStatus
}

type RoomStatus struct {
	ID      ConsultationID
	Members map[AccountID]SessionID
	Notes   int
}

type ChatStatus struct {
	ID          ChatID
	Subscribers int
}
