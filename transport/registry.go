package transport

import (
	"encoding/json"
	"log/slog"
	"sync"

	"mentorlive/contract"
	"mentorlive/domain"
	"mentorlive/domain/event"
	"mentorlive/observability"
)

var _ contract.Emitter = (*Registry)(nil)

// Registry is the transport-side session table: session id -> live peer.
// It is the only component that knows which sessions are still reachable,
// which is what turns "emit to a disconnected session" into a silent
// no-op for everyone upstream.
type Registry struct {
	mu      sync.RWMutex
	log     *slog.Logger
	monitor *observability.MonitoringManager
	peers   map[domain.SessionID]*peer
}

func NewRegistry(log *slog.Logger, monitor *observability.MonitoringManager) *Registry {
	return &Registry{
		log:     log,
		monitor: monitor,
		peers:   make(map[domain.SessionID]*peer),
	}
}

func (r *Registry) add(p *peer) {
	r.mu.Lock()
	r.peers[p.session] = p
	r.mu.Unlock()
	r.monitor.IncrConnects()
}

func (r *Registry) remove(session domain.SessionID) {
	r.mu.Lock()
	p, ok := r.peers[session]
	delete(r.peers, session)
	r.mu.Unlock()

	if ok {
		p.close()
		r.monitor.IncrDisconnects()
	}
}

// Emit wraps the event into a frame and hands it to the session's writer.
// Unknown sessions and full buffers drop the frame without an error.
func (r *Registry) Emit(to domain.SessionID, evt event.Outbound) {
	r.mu.RLock()
	p, ok := r.peers[to]
	r.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		r.log.Error("Outbound event not serializable",
			"event", evt.Event(), "error", err)
		return
	}

	if p.send(frame{Event: string(evt.Event()), Payload: payload}) {
		r.monitor.IncrEmits()
	} else {
		r.monitor.IncrEmitDrops()
		r.log.Debug("Outbound buffer full, frame dropped",
			"session", to, "event", evt.Event())
	}
}
