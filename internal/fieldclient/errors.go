package fieldclient

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrOffline means the server is unreachable; nothing is penalized.
	ErrOffline = crerr.New("field client is offline")
	// ErrConflict means the match moved on server-side (finished) and the
	// queue holds events for it. Automated replay stops until resolved.
	ErrConflict = crerr.New("match conflict")
	// ErrRejected is a permanent server refusal (validation, transition).
	ErrRejected = crerr.New("event rejected by server")
	// ErrDeliveryFailed is a transient failure worth retrying.
	ErrDeliveryFailed = crerr.New("event delivery failed")

	ErrUnknownResolution = crerr.New("unknown conflict resolution")
)

func isOffline(err error) bool {
	return crerr.Is(err, ErrOffline)
}

func isConflict(err error) bool {
	return crerr.Is(err, ErrConflict)
}

func isRejected(err error) bool {
	return crerr.Is(err, ErrRejected)
}
