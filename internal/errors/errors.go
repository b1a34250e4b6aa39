// Package errors defines the typed error values used across the template
// engine. Every failure that aborts a processing run is a *ProcessingError
// carrying an error kind and, when known, the template name and source
// position of the offending event. Kinds are matchable with the standard
// errors.As/Is machinery via IsKind.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a processing failure.
type Kind int

const (
	// KindImmutable is an attempt to mutate an event or container obtained
	// through an immutable view. Always fatal to the call, never retried.
	KindImmutable Kind = iota
	// KindConflictingEffect is a processor chain declaring mutually exclusive
	// structural effects on one event. Signals a dialect bug.
	KindConflictingEffect
	// KindUnknownEvent is an event kind with no known handling on a generic
	// dispatch path. Signals a model/dispatch mismatch.
	KindUnknownEvent
	// KindProcessor is a failure inside a processor's own logic, propagated
	// with location context attached.
	KindProcessor
	// KindParse is a failure turning template source into events.
	KindParse
	// KindResolve is a template name that no resolver could map to source.
	KindResolve
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindImmutable:
		return "immutable"
	case KindConflictingEffect:
		return "conflicting effect"
	case KindUnknownEvent:
		return "unknown event"
	case KindProcessor:
		return "processor"
	case KindParse:
		return "parse"
	case KindResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// ProcessingError is the error type surfaced by a failed processing run.
type ProcessingError struct {
	Kind     Kind
	Template string
	Line     int
	Col      int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Template != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Template, e.Line, e.Col, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// New creates a ProcessingError without location information.
func New(kind Kind, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Immutable creates the canonical immutability violation for the named
// mutating capability. The message directs the caller to fork the container
// first, which is the only way to obtain a mutable copy of frozen markup.
func Immutable(capability string) *ProcessingError {
	return &ProcessingError{
		Kind: KindImmutable,
		Message: fmt.Sprintf(
			"%s is not allowed on an event obtained from immutable markup; "+
				"immutable markup is shared by concurrent processing runs and is kept "+
				"unmodified for cache consistency. Fork the markup to obtain a mutable copy first",
			capability),
	}
}

// Conflicting creates the error for two mutually exclusive structural effects
// declared on the same event.
func Conflicting(first, second string) *ProcessingError {
	return &ProcessingError{
		Kind: KindConflictingEffect,
		Message: fmt.Sprintf(
			"processor chain declared both %q and %q for the same event; "+
				"exactly one structural effect may win per event", first, second),
	}
}

// Wrap attaches a kind and cause to an error from a collaborator. A nil cause
// returns nil.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &ProcessingError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// At returns a copy of err with the given template location attached. If err
// is not a ProcessingError it is wrapped as a KindProcessor error. Location
// already present on err is preserved.
func At(err error, template string, line, col int) error {
	if err == nil {
		return nil
	}
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		if pe.Template != "" {
			return err
		}
		located := *pe
		located.Template = template
		located.Line = line
		located.Col = col
		return &located
	}
	return &ProcessingError{
		Kind:     KindProcessor,
		Template: template,
		Line:     line,
		Col:      col,
		Err:      err,
	}
}

// IsKind reports whether err is (or wraps) a ProcessingError of the given
// kind.
func IsKind(err error, kind Kind) bool {
	var pe *ProcessingError
	if stderrors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
