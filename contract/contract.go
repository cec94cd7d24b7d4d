//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"mentorlive/domain"
	"mentorlive/domain/event"
)

// Emitter pushes an outbound event to one session. Emitting to a session
// that is gone must be a silent no-op; delivery is best-effort by design.
type Emitter interface {
	Emit(to domain.SessionID, evt event.Outbound)
}

// IDispatcher is the transport's entry point into the coordinator.
type IDispatcher interface {
	Dispatch(cmd domain.Command)
	Inspect(ctx context.Context) (domain.Snapshot, error)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
