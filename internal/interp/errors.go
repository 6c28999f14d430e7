package interp

import (
	"errors"
	"fmt"

	"github.com/derrell/LearnCS-sub002/internal/memory"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

var (
	// ErrStopped is reported when a run ends because Stop was called or
	// the driving context was cancelled.
	ErrStopped = errors.New("execution stopped")

	// ErrStalePause is returned when resuming with a pause token that is
	// not the machine's current suspension.
	ErrStalePause = errors.New("stale pause token")

	// ErrInputClosed is reported when a program reads past the end of
	// input that the host has closed and the read cannot return EOF.
	ErrInputClosed = errors.New("end of input")

	// ErrStepLimit is reported when a run executes more statements than
	// Config.MaxSteps allows.
	ErrStepLimit = errors.New("statement limit exceeded")
)

// Phase tells when a RuntimeError was raised.
type Phase int

const (
	Run  Phase = iota // while executing statements
	Decl              // while loading declarations, before main runs
)

// RuntimeError is an error attributed to a node of the program.
type RuntimeError struct {
	Phase Phase
	Node  *syntax.Node
	Pos   syntax.Pos
	Line  int
	Msg   string
	Err   error // underlying cause, if any
}

func (e *RuntimeError) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Position returns the location the error is attributed to.
func (e *RuntimeError) Position() syntax.Pos {
	return e.Pos
}

// exitStatus unwinds the evaluator when the program calls exit.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit(%d)", int(e))
}

// newError builds a RuntimeError at n.
func newError(phase Phase, n *syntax.Node, err error, msg string) *RuntimeError {
	e := &RuntimeError{Phase: phase, Node: n, Msg: msg, Err: err}
	if n != nil {
		e.Pos = n.Pos
		e.Line = n.Line()
	}
	return e
}

// errorf returns a run-time error at n.
func (m *Machine) errorf(n *syntax.Node, format string, args ...interface{}) error {
	return newError(Run, n, nil, fmt.Sprintf(format, args...))
}

// fail attributes err to n unless it already carries a position or is
// a control signal.
func (m *Machine) fail(n *syntax.Node, err error) error {
	var rt *RuntimeError
	var exit exitStatus
	if err == nil || errors.As(err, &rt) || errors.As(err, &exit) {
		return err
	}
	return newError(Run, n, err, describe(err))
}

// describe renders the underlying failures of the value and memory
// packages in the wording shown to students.
func describe(err error) string {
	var acc *memory.AccessError
	switch {
	case errors.Is(err, ErrStopped):
		return "execution stopped"
	case errors.Is(err, value.ErrDivideByZero):
		return "division by zero"
	case errors.As(err, &acc) && errors.Is(err, memory.ErrNull):
		return fmt.Sprintf("null pointer dereference (%s at address 0x%04x)", acc.Op, acc.Addr)
	case errors.As(err, &acc) && errors.Is(err, memory.ErrStale):
		return fmt.Sprintf("access to memory that is not allocated (%s at address 0x%04x)", acc.Op, acc.Addr)
	case errors.As(err, &acc) && errors.Is(err, memory.ErrOutOfRange):
		return fmt.Sprintf("address 0x%04x is outside of memory", acc.Addr)
	}
	return err.Error()
}
