package reactive

import (
	"fmt"

	lterrors "github.com/vango-dev/livetree/internal/errors"
)

var (
	// ErrCycleDetected matches every *CycleError.
	ErrCycleDetected = lterrors.New("LT001")

	// ErrSelfRead is the panic value carried when a derived cell is read
	// during its own computation.
	ErrSelfRead = lterrors.New("LT002")

	// ErrDisposed is returned by Update on a disposed observer.
	ErrDisposed = lterrors.New("LT003")

	// ErrObserverPanic wraps a panic recovered inside the flush.
	ErrObserverPanic = lterrors.New("LT004")
)

// CycleError reports a flush that did not settle within MaxRounds rounds.
type CycleError struct {
	// Rounds is the number of rounds run before giving up.
	Rounds int

	// Observer names the observer that exceeded its run budget, if the
	// cycle was caught inside one round.
	Observer string

	// Stack is the stack captured where the flush was scheduled.
	Stack []byte
}

func (e *CycleError) Error() string {
	if e.Observer != "" {
		return fmt.Sprintf("reactive: cycle detected: %s ran more than %d times in one flush", e.Observer, e.Rounds)
	}
	return fmt.Sprintf("reactive: cycle detected after %d rounds", e.Rounds)
}

// Is reports whether target is ErrCycleDetected.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// Unwrap returns the coded error so callers can print it with Format.
func (e *CycleError) Unwrap() error {
	return lterrors.New("LT001").
		WithStack(string(e.Stack)).
		WithSuggestion("Check observers that write to cells they also read, directly or through derived cells.")
}

func selfReadError(name string) *lterrors.Error {
	return lterrors.New("LT002").
		WithDetail(fmt.Sprintf("%s was read while it was computing.", name))
}

func panicError(name string, r any) error {
	if err, ok := r.(error); ok {
		return lterrors.New("LT004").
			WithDetail(fmt.Sprintf("%s panicked", name)).
			Wrap(err)
	}
	return lterrors.New("LT004").
		WithDetail(fmt.Sprintf("%s panicked: %v", name, r))
}
