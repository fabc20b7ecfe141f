package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Code classifies store errors.
type Code int

const (
	CodeInternal Code = iota
	CodeNotFound
	CodeValidation
	CodeDuplicate
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeValidation:
		return "VALIDATION"
	case CodeDuplicate:
		return "DUPLICATE"
	default:
		return "INTERNAL"
	}
}

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrNotFound   = &Error{Code: CodeNotFound}
	ErrValidation = &Error{Code: CodeValidation}
	ErrDuplicate  = &Error{Code: CodeDuplicate}
)

// Error is returned by every store operation.
type Error struct {
	Op   string
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "store error"
	}
	msg := fmt.Sprintf("store: %s", e.Code)
	if e.Op != "" {
		msg = fmt.Sprintf("store: %s: %s", e.Op, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Code == e.Code
}

// CodeOf returns the code of err, or CodeInternal when err is not a store error.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

func notFound(op, what string) error {
	return &Error{Op: op, Code: CodeNotFound, Err: fmt.Errorf("%s not found", what)}
}

func invalid(op, msg string) error {
	return &Error{Op: op, Code: CodeValidation, Err: errors.New(msg)}
}

// wrap classifies a driver error. Unique constraint violations become
// CodeDuplicate, everything else CodeInternal.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &Error{Op: op, Code: CodeDuplicate, Err: err}
	}
	return &Error{Op: op, Code: CodeInternal, Err: err}
}
