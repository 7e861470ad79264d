package wipe

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind классифицирует ошибки сессии
type Kind int

const (
	KindConfig Kind = iota + 1
	KindOpen
	KindProbe
	KindIO
	KindSync
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindOpen:
		return "open"
	case KindProbe:
		return "probe"
	case KindIO:
		return "io"
	case KindSync:
		return "sync"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks against an *Error.
var (
	ErrConfig   = errors.New("invalid wipe configuration")
	ErrOpen     = errors.New("cannot open wipe target")
	ErrProbe    = errors.New("cannot probe wipe target")
	ErrIO       = errors.New("write to wipe target failed")
	ErrSync     = errors.New("sync of wipe target failed")
	ErrCanceled = errors.New("wipe canceled")
)

var sentinels = map[Kind]error{
	KindConfig:   ErrConfig,
	KindOpen:     ErrOpen,
	KindProbe:    ErrProbe,
	KindIO:       ErrIO,
	KindSync:     ErrSync,
	KindCanceled: ErrCanceled,
}

// Error is returned by New and Session.Run. Pass and BytesWritten are set
// for failures inside a pass.
type Error struct {
	Kind         Kind
	Op           string
	Path         string
	Pass         int
	BytesWritten uint64
	Err          error
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func passError(kind Kind, op, path string, pass int, written uint64, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Pass: pass, BytesWritten: written, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Pass > 0 {
		msg += fmt.Sprintf(" (pass %d, %d bytes written)", e.Pass, e.BytesWritten)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return 0
}
