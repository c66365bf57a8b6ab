// Package rlerr implements the errors shared by agents, environments,
// and the collaborators that drive them.
package rlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every *Error unwraps to exactly one of these.
var (
	// ErrInvalidArgument reports malformed construction parameters,
	// out-of-alphabet states or actions, or a malformed grid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrKeyNotFound reports a lookup against a fixed table with a key
	// outside the table's enumerated alphabet.
	ErrKeyNotFound = errors.New("key not found")

	// ErrConvergenceFailure reports that value iteration exceeded its
	// sweep cap before reaching the acceptable error.
	ErrConvergenceFailure = errors.New("convergence failure")
)

// Error describes a failed operation. Args holds the offending values
// and Reason the detailed cause, which may aggregate several causes.
type Error struct {
	Op     string
	Err    error
	Args   map[string]interface{}
	Reason error
}

// Error satisfies the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op + ": " + e.Err.Error())

	if e.Reason != nil {
		b.WriteString(": " + strings.TrimSpace(e.Reason.Error()))
	}
	if len(e.Args) > 0 {
		b.WriteString(fmt.Sprintf(" %v", e.Args))
	}
	return b.String()
}

// Unwrap returns the sentinel error kind
func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument returns a new *Error of kind ErrInvalidArgument
func InvalidArgument(op string, reason error,
	args map[string]interface{}) error {
	return &Error{Op: op, Err: ErrInvalidArgument, Args: args, Reason: reason}
}

// KeyNotFound returns a new *Error of kind ErrKeyNotFound
func KeyNotFound(op string, args map[string]interface{}) error {
	return &Error{Op: op, Err: ErrKeyNotFound, Args: args}
}

// ConvergenceFailure returns a new *Error of kind ErrConvergenceFailure
func ConvergenceFailure(op string, reason error,
	args map[string]interface{}) error {
	return &Error{Op: op, Err: ErrConvergenceFailure, Args: args,
		Reason: reason}
}

// IsInvalidArgument returns whether or not an error reports an invalid
// argument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsKeyNotFound returns whether or not an error reports a lookup outside
// of a fixed alphabet.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsConvergenceFailure returns whether or not an error reports that
// value iteration did not converge within its sweep cap.
func IsConvergenceFailure(err error) bool {
	return errors.Is(err, ErrConvergenceFailure)
}
