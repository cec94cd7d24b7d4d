package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrInspectTimedOut = fmt.Errorf("state inspection timed out")
)
