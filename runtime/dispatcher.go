package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"mentorlive/contract"
	"mentorlive/domain"
	apperrors "mentorlive/errors"
	"mentorlive/observability"
)

// Ensure *Dispatcher satisfies both roles it plays at compile time.
var (
	_ contract.Worker      = (*Dispatcher)(nil)
	_ contract.IDispatcher = (*Dispatcher)(nil)
)

// Dispatcher feeds the coordinator from a single buffered channel.
// Per-connection ordering holds because each connection's read loop
// enqueues sequentially, and handlers never interleave because one
// goroutine drains the channel. This is the only place the coordinator's
// state is ever touched.
type Dispatcher struct {
	log         *slog.Logger
	coordinator *Coordinator
	commands    chan domain.Command
	monitor     *observability.MonitoringManager
}

func NewDispatcher(log *slog.Logger, coordinator *Coordinator,
	bufferSize int, monitor *observability.MonitoringManager) *Dispatcher {
	return &Dispatcher{
		log:         log,
		coordinator: coordinator,
		commands:    make(chan domain.Command, bufferSize),
		monitor:     monitor,
	}
}

// Dispatch enqueues a command for the loop. Regular traffic is
// best-effort and dropped with a warning when the buffer is full, like
// every other delivery in this layer. Lifecycle commands block instead:
// losing a disconnect would leak a seat in a consultation room forever.
func (d *Dispatcher) Dispatch(cmd domain.Command) {
	switch cmd.(type) {
	case domain.ConnectCommand, domain.DisconnectCommand:
		d.commands <- cmd
		return
	}

	select {
	case d.commands <- cmd:
		d.monitor.IncrDispatched()
	default:
		d.monitor.IncrDropped()
		d.log.Warn(fmt.Sprintf("Command buffer full, dropping %T from %s", cmd, cmd.Origin()))
	}
}

// Inspect asks the loop for a state snapshot, so inspection reads go
// through the same serialization as every mutation.
func (d *Dispatcher) Inspect(ctx context.Context) (domain.Snapshot, error) {
	reply := make(chan domain.Snapshot, 1)

	select {
	case d.commands <- domain.InspectCommand{Reply: reply}:
	case <-ctx.Done():
		return domain.Snapshot{}, apperrors.ErrInspectTimedOut
	}

	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-ctx.Done():
		return domain.Snapshot{}, apperrors.ErrInspectTimedOut
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Stopping dispatcher")
			return ctx.Err()
		case cmd, ok := <-d.commands:
			if !ok {
				return nil
			}
			d.coordinator.Handle(cmd)
		}
	}
}
