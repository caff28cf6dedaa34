package rpc

import "errors"

// ErrNegativeScore is returned when a score update would go below zero
var ErrNegativeScore = errors.New("score must not be negative")
