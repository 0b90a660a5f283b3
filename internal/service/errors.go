package service

import "errors"

// ErrorKind classifies a failed operation so the transport layer can pick a
// response code without inspecting messages. Transport codes live at the
// HTTP boundary only.
type ErrorKind int

const (
	KindValidation ErrorKind = iota // malformed or missing input
	KindNotFound                    // unknown document id
	KindConflict                    // operation forbidden in the current status
	KindInternal                    // storage or unexpected failure
)

// Error is the tagged failure type raised by the document service.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

func validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
