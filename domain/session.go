// Package domain contains core concepts of the signaling layer.
// All entities here are transient and process-lifetime-scoped;
// nothing in this package touches the network or a database.
package domain

import (
	"time"
)

// SessionID identifies one live transport connection. It is opaque to
// clients and assigned at connect time.
type SessionID string

// AccountID is the marketplace account identifier, trusted as-is because
// authentication happens upstream.
type AccountID string

// ConsultationID keys a scheduled mentorship consultation.
type ConsultationID string

// ChatID keys a persisted 1:1 or group chat.
type ChatID string

// Session represents one live connection. The account binding arrives
// later through the init event; the latest init wins.
type Session struct {
	ID          SessionID
	Account     AccountID
	ConnectedAt time.Time
}

func NewSession(id SessionID) *Session {
	return &Session{ID: id, ConnectedAt: time.Now().UTC()}
}
