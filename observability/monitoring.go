package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats is one snapshot of the signaling process, served by the
// debug page and logged periodically.
type MonitoringStats struct {
	SessionsConnected int64   `json:"sessions_connected"`
	TotalConnects     uint64  `json:"total_connects"`
	TotalDisconnects  uint64  `json:"total_disconnects"`
	EventsDispatched  uint64  `json:"events_dispatched"`
	EventsDropped     uint64  `json:"events_dropped"`
	EmitsDelivered    uint64  `json:"emits_delivered"`
	EmitsDropped      uint64  `json:"emits_dropped"`
	AllocMemMb        uint64  `json:"alloc_mem_mb"`
	NumGC             uint32  `json:"num_gc"`
	RSSBytes          uint64  `json:"rss_bytes"`
	CPUPercent        float64 `json:"cpu_percent"`
}

// MonitoringManager aggregates realtime counters for the coordinator.
// Counters are atomic: the transport and the dispatch loop bump them from
// their own goroutines.
type MonitoringManager struct {
	log  *slog.Logger
	self *process.Process

	sessionsConnected int64
	totalConnects     uint64
	totalDisconnects  uint64
	eventsDispatched  uint64
	eventsDropped     uint64
	emitsDelivered    uint64
	emitsDropped      uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	// Self inspection can fail on exotic platforms; stats then simply
	// omit RSS and CPU.
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Self process stats unavailable", "error", err)
		self = nil
	}
	return &MonitoringManager{log: log, self: self}
}

func (mm *MonitoringManager) IncrConnects() {
	atomic.AddInt64(&mm.sessionsConnected, 1)
	atomic.AddUint64(&mm.totalConnects, 1)
}

func (mm *MonitoringManager) IncrDisconnects() {
	atomic.AddInt64(&mm.sessionsConnected, -1)
	atomic.AddUint64(&mm.totalDisconnects, 1)
}

func (mm *MonitoringManager) IncrDispatched() {
	atomic.AddUint64(&mm.eventsDispatched, 1)
}

func (mm *MonitoringManager) IncrDropped() {
	atomic.AddUint64(&mm.eventsDropped, 1)
}

func (mm *MonitoringManager) IncrEmits() {
	atomic.AddUint64(&mm.emitsDelivered, 1)
}

func (mm *MonitoringManager) IncrEmitDrops() {
	atomic.AddUint64(&mm.emitsDropped, 1)
}

// Snapshot reads every counter plus memory and process stats.
func (mm *MonitoringManager) Snapshot() MonitoringStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := MonitoringStats{
		SessionsConnected: atomic.LoadInt64(&mm.sessionsConnected),
		TotalConnects:     atomic.LoadUint64(&mm.totalConnects),
		TotalDisconnects:  atomic.LoadUint64(&mm.totalDisconnects),
		EventsDispatched:  atomic.LoadUint64(&mm.eventsDispatched),
		EventsDropped:     atomic.LoadUint64(&mm.eventsDropped),
		EmitsDelivered:    atomic.LoadUint64(&mm.emitsDelivered),
		EmitsDropped:      atomic.LoadUint64(&mm.emitsDropped),
		AllocMemMb:        mem.Alloc / 1024 / 1024,
		NumGC:             mem.NumGC,
	}

	if mm.self != nil {
		if memInfo, err := mm.self.MemoryInfo(); err == nil {
			stats.RSSBytes = memInfo.RSS
		}
		if cpu, err := mm.self.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
	}
	return stats
}
