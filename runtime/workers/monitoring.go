package workers

import (
	"context"
	"log/slog"
	"time"

	"mentorlive/contract"
	"mentorlive/observability"
)

var _ contract.Worker = (*MonitoringWorker)(nil)

// MonitoringWorker periodically logs a stats snapshot. Purely for
// operators; nothing reads these numbers back.
type MonitoringWorker struct {
	log      *slog.Logger
	monitor  *observability.MonitoringManager
	interval time.Duration
}

func NewMonitoringWorker(log *slog.Logger, monitor *observability.MonitoringManager,
	interval time.Duration) *MonitoringWorker {
	return &MonitoringWorker{log: log, monitor: monitor, interval: interval}
}

func (w *MonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping monitoring worker")
			return ctx.Err()
		case <-ticker.C:
			stats := w.monitor.Snapshot()
			w.log.Info("Signaling stats",
				"sessions", stats.SessionsConnected,
				"dispatched", stats.EventsDispatched,
				"dropped", stats.EventsDropped,
				"emits", stats.EmitsDelivered,
				"emit_drops", stats.EmitsDropped,
				"alloc_mb", stats.AllocMemMb,
				"rss_bytes", stats.RSSBytes,
				"cpu_percent", stats.CPUPercent)
		}
	}
}
