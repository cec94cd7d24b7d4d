package transport

import (
	"encoding/json"
	"log/slog"
	"sync"

	"mentorlive/domain"
)

// frame is the wire envelope in both directions:
// {"event": "...", "payload": {...}}.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// peer owns the write side of one connection: a buffered channel drained
// by a single writer goroutine, so outbound frames for a session keep
// their order no matter which handler produced them.
type peer struct {
	session domain.SessionID
	out     chan frame
	done    chan struct{}
	once    sync.Once
}

func newPeer(session domain.SessionID, bufferSize int) *peer {
	return &peer{
		session: session,
		out:     make(chan frame, bufferSize),
		done:    make(chan struct{}),
	}
}

// send hands a frame to the writer without blocking the dispatch loop.
// A full buffer or a closed peer drops the frame; this layer is
// best-effort end to end.
func (p *peer) send(f frame) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.out <- f:
		return true
	default:
		return false
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
	})
}

// writeLoop is the single writer for this connection. It stops on the
// first encode failure (the socket is gone) or when the peer is closed.
func (p *peer) writeLoop(log *slog.Logger, encoder *json.Encoder) {
	for {
		select {
		case <-p.done:
			return
		case f := <-p.out:
			if err := encoder.Encode(f); err != nil {
				log.Debug("Write failed, closing peer",
					"session", p.session, "error", err)
				return
			}
		}
	}
}
