package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a failure for callers; transport layers map it to a status.
type Code string

const (
	InvalidArgument   Code = "invalid_argument"
	NotFound          Code = "not_found"
	Forbidden         Code = "forbidden"
	Conflict          Code = "conflict"
	DependencyFailure Code = "dependency_failure"
	Unauthenticated   Code = "unauthenticated"
	Internal          Code = "internal"
)

type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s", op, msg)
	case msg != "":
		return msg
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message)}
}

func Newf(code Code, op, format string, args ...any) error {
	return New(code, op, fmt.Sprintf(format, args...))
}

// Wrap annotates err with a code. A nil err stays nil.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: err.Error(), Cause: err}
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns Internal for errors that carry no code.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return Internal
}

// MessageOf returns the caller-facing message without the op prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
