package admission

import (
	"errors"
	"fmt"
)

// UnknownEventTypeError indicates that the event type is not part of the
// decoder table.
type UnknownEventTypeError struct {
	eventType string
}

func (e UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown session event type %q", e.eventType)
}

// NewUnknownEventTypeError returns a new UnknownEventTypeError
func NewUnknownEventTypeError(eventType string) UnknownEventTypeError {
	return UnknownEventTypeError{eventType: eventType}
}

// IsUnknownEventTypeError returns true if an error is UnknownEventTypeError
func IsUnknownEventTypeError(err error) bool {
	var e UnknownEventTypeError
	return errors.As(err, &e)
}

// EventUnmarshalError indicates that the contents of an event of a known type
// could not be decoded or do not form a valid request.
type EventUnmarshalError struct {
	eventType string
	err       error
}

func (e EventUnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal session event of type %s: %v", e.eventType, e.err)
}

func (e EventUnmarshalError) Unwrap() error {
	return e.err
}

// NewEventUnmarshalError returns a new EventUnmarshalError
func NewEventUnmarshalError(eventType string, err error) EventUnmarshalError {
	return EventUnmarshalError{eventType: eventType, err: err}
}

// IsEventUnmarshalError returns true if an error is EventUnmarshalError
func IsEventUnmarshalError(err error) bool {
	var e EventUnmarshalError
	return errors.As(err, &e)
}
