package transport

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"mentorlive/domain/event"
	"mentorlive/observability"
)

func newTestRegistry() (*Registry, *observability.MonitoringManager) {
	log := slog.Default()
	monitor := observability.NewMonitoringManager(log)
	return NewRegistry(log, monitor), monitor
}

func TestRegistry_Emit_DeliversFrameToPeer(t *testing.T) {
	req := require.New(t)
	registry, monitor := newTestRegistry()

	// Given a registered peer
	p := newPeer("s1", 4)
	registry.add(p)

	// When an event targets it
	registry.Emit("s1", event.YourID{ID: "s1"})

	// Then the frame sits in its outbound buffer
	f := <-p.out
	req.Equal("yourID", f.Event)
	req.JSONEq(`{"id":"s1"}`, string(f.Payload))
	req.Equal(uint64(1), monitor.Snapshot().EmitsDelivered)
}

func TestRegistry_Emit_UnknownSessionIsSilent(t *testing.T) {
	req := require.New(t)
	registry, monitor := newTestRegistry()

	// When an event targets a session that never existed or already left
	req.NotPanics(func() {
		registry.Emit("ghost", event.CallEnded{})
	})

	// Then nothing was delivered and nothing was counted as dropped either
	stats := monitor.Snapshot()
	req.Zero(stats.EmitsDelivered)
	req.Zero(stats.EmitsDropped)
}

func TestRegistry_Emit_FullBufferDropsFrame(t *testing.T) {
	req := require.New(t)
	registry, monitor := newTestRegistry()

	// Given a peer whose writer is stuck
	p := newPeer("s1", 1)
	registry.add(p)
	registry.Emit("s1", event.CallEnded{})

	// When one more event arrives
	registry.Emit("s1", event.CallEnded{})

	// Then it was dropped, the first one kept
	stats := monitor.Snapshot()
	req.Equal(uint64(1), stats.EmitsDelivered)
	req.Equal(uint64(1), stats.EmitsDropped)
	req.Len(p.out, 1)
}

func TestRegistry_Remove_ClosesPeer(t *testing.T) {
	req := require.New(t)
	registry, monitor := newTestRegistry()

	p := newPeer("s1", 4)
	registry.add(p)
	req.Equal(int64(1), monitor.Snapshot().SessionsConnected)

	// When the session is removed
	registry.remove("s1")

	// Then the peer refuses further frames and the gauge went down
	req.False(p.send(frame{Event: "yourID"}))
	req.Zero(monitor.Snapshot().SessionsConnected)

	// And removing it twice does not double count
	registry.remove("s1")
	req.Zero(monitor.Snapshot().SessionsConnected)
}
