package events

import "errors"

// ErrUnknownEventType is returned when an event carries a type this package does not define
var ErrUnknownEventType = errors.New("unknown event type")
