package hook

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindOther Kind = iota
	KindAlreadyRunning
	KindNotRunning
	KindHookStartFailed
	KindHookStopFailed
	KindSimulateFailed
	KindPermissionDenied
	KindThreadError
	KindNotSupported
	KindPlatform
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyRunning:
		return "hook already running"
	case KindNotRunning:
		return "hook not running"
	case KindHookStartFailed:
		return "failed to start hook"
	case KindHookStopFailed:
		return "failed to stop hook"
	case KindSimulateFailed:
		return "failed to simulate event"
	case KindPermissionDenied:
		return "permission denied"
	case KindThreadError:
		return "thread error"
	case KindNotSupported:
		return "not supported"
	case KindPlatform:
		return "platform error"
	default:
		return "error"
	}
}

// Error is returned by hooks, adapters and simulators.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotRunning)
// works for errors carrying a message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAlreadyRunning   = &Error{Kind: KindAlreadyRunning}
	ErrNotRunning       = &Error{Kind: KindNotRunning}
	ErrHookStartFailed  = &Error{Kind: KindHookStartFailed}
	ErrHookStopFailed   = &Error{Kind: KindHookStopFailed}
	ErrSimulateFailed   = &Error{Kind: KindSimulateFailed}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrThread           = &Error{Kind: KindThreadError}
	ErrNotSupported     = &Error{Kind: KindNotSupported}
	ErrPlatform         = &Error{Kind: KindPlatform}
)

func StartFailed(msg string, err error) error {
	return &Error{Kind: KindHookStartFailed, Msg: msg, Err: err}
}

func StopFailed(msg string, err error) error {
	return &Error{Kind: KindHookStopFailed, Msg: msg, Err: err}
}

func SimulateFailed(msg string, err error) error {
	return &Error{Kind: KindSimulateFailed, Msg: msg, Err: err}
}

func PermissionDenied(msg string, err error) error {
	return &Error{Kind: KindPermissionDenied, Msg: msg, Err: err}
}

func ThreadError(msg string, err error) error {
	return &Error{Kind: KindThreadError, Msg: msg, Err: err}
}

func NotSupported(msg string) error {
	return &Error{Kind: KindNotSupported, Msg: msg}
}

func Platform(msg string, err error) error {
	return &Error{Kind: KindPlatform, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}
