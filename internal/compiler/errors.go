package compiler

import (
	"errors"
	"fmt"
)

// ErrNoDesign means a stage that cannot auto-create a design was asked to
// run before any design was configured.
var ErrNoDesign = errors.New("no design specified")

// StateError reports a stage started from a state it does not accept.
type StateError struct {
	Stage string
	Need  string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: design needs to be in %s state, current state is %s",
		e.Stage, e.Need, e.State)
}

// StageError wraps a stage failure with the stage name so callers can
// report which part of the flow broke.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// MissingToolError reports an external executable that could not be found.
type MissingToolError struct {
	Tool string
	Path string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("cannot find %s executable: %s", e.Tool, e.Path)
}
