// Package cerrors provides typed error handling for the river-go judge.
//
// It defines the closed error taxonomy from the judge's error model: every
// error occurring in the parent process is classified into one ErrorKind,
// which the RPC boundary later folds into a single user-visible SystemError
// verdict. Errors inside the sandboxed child are never returned across the
// fork/exec boundary — they terminate the child and the parent infers the
// kind from exit status, signal, and side effects instead.
package cerrors

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a judge error. This is the closed taxonomy from
// the judge's error model: every kind maps to a SystemError verdict at
// the RPC boundary, with the original kind preserved for logs.
type ErrorKind int

const (
	// ErrConfig indicates a language missing from config or malformed YAML.
	ErrConfig ErrorKind = iota
	// ErrWorkspace indicates a workspace create/remove failure.
	ErrWorkspace
	// ErrIO indicates a file read/write/copy failure.
	ErrIO
	// ErrSandboxSetup indicates a failure before exec inside the sandboxed
	// child (cgroup write, mount, chroot, setuid, seccomp load). The child
	// self-SIGKILLs; the parent observes signal != 0, exit_code == 0.
	ErrSandboxSetup
	// ErrSandboxRuntime indicates a wait4 or clock-read failure in the
	// parent while supervising a sandboxed run.
	ErrSandboxRuntime
	// ErrProtocol indicates an unrecognized request variant or a missing
	// required field on the RPC stream.
	ErrProtocol
	// ErrCompileLimit indicates the compile step exceeded its own CPU or
	// memory budget; reported as CompileError with an empty message.
	ErrCompileLimit
	// ErrSpecialJudge indicates the special-judge binary was missing or
	// crashed.
	ErrSpecialJudge
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrConfig:
		return "config error"
	case ErrWorkspace:
		return "workspace error"
	case ErrIO:
		return "io error"
	case ErrSandboxSetup:
		return "sandbox setup error"
	case ErrSandboxRuntime:
		return "sandbox runtime error"
	case ErrProtocol:
		return "protocol error"
	case ErrCompileLimit:
		return "compile limit exceeded"
	case ErrSpecialJudge:
		return "special judge error"
	default:
		return "unknown error"
	}
}

// JudgeError is the judge's single error type: every operation failure is
// wrapped into one of these so the RPC boundary can classify it without
// string matching.
type JudgeError struct {
	// Op is the operation that failed (e.g. "compile", "spawn", "compare").
	Op string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind ErrorKind
	// Detail provides additional human-readable context.
	Detail string
}

// Error returns the error message.
func (e *JudgeError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Op != "" {
		msg += fmt.Sprintf("%s: ", e.Op)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *JudgeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target. It matches if the
// target is a *JudgeError with the same Kind; for any other target it
// returns false, and errors.Is goes on to the underlying error via Unwrap.
func (e *JudgeError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*JudgeError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new JudgeError with the given kind.
func New(kind ErrorKind, op string, detail string) *JudgeError {
	return &JudgeError{Op: op, Kind: kind, Detail: detail}
}

// Wrap wraps an error with judge context.
func Wrap(err error, kind ErrorKind, op string) *JudgeError {
	return &JudgeError{Op: op, Err: err, Kind: kind}
}

// WrapDetail wraps an error with additional detail.
func WrapDetail(err error, kind ErrorKind, op string, detail string) *JudgeError {
	return &JudgeError{Op: op, Err: err, Kind: kind, Detail: detail}
}

// IsKind checks whether an error is of a specific kind.
func IsKind(err error, kind ErrorKind) bool {
	var jerr *JudgeError
	if errors.As(err, &jerr) {
		return jerr.Kind == kind
	}
	return false
}

// GetKind returns the error kind if the error is a JudgeError, for logging
// the classification alongside the error text at an RPC boundary.
func GetKind(err error) (ErrorKind, bool) {
	var jerr *JudgeError
	if errors.As(err, &jerr) {
		return jerr.Kind, true
	}
	return 0, false
}
