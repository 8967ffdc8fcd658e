package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvariant         = errors.New("invariant violation")
	ErrUnexpectedCommand = errors.New("command not accepted in this phase")
	ErrStopped           = errors.New("game stopped")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrInvalidConfig     = errors.New("invalid game configuration")
)

// UnexpectedCommandError is published when a command arrives in a phase
// that does not accept it.
type UnexpectedCommandError struct {
	Command Command
	Phase   Phase
}

func (e *UnexpectedCommandError) Error() string {
	return fmt.Sprintf("%s: %s during %s", ErrUnexpectedCommand, e.Command, e.Phase)
}

func (e *UnexpectedCommandError) Unwrap() error {
	return ErrUnexpectedCommand
}

// InvariantError is published when a command cannot be applied because the
// game state or a computation broke an invariant. The command is dropped and
// the game keeps running.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvariant, e.Op, e.Err)
}

func (e *InvariantError) Unwrap() []error {
	return []error{ErrInvariant, e.Err}
}
