// Package apperr is the domain error taxonomy shared by the booking core.
// Handlers translate kinds to HTTP status codes; repositories translate
// driver errors into kinds.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindConflict
)

type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func NotFound(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == k
}

func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
