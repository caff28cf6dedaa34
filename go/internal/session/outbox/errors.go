package outbox

import "errors"

var (
	ErrRelayRunning    = errors.New("relay already running")
	ErrRelayNotRunning = errors.New("relay not running")
)
