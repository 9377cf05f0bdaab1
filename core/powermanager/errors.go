package powermanager

import "errors"

var (
	// ErrUnknownAlgorithm is returned at construction for an unsupported
	// algorithm name.
	ErrUnknownAlgorithm = errors.New("powermanager: unknown algorithm")
	// ErrFeedClosed is returned by Run when a bounds feed stops while the
	// manager is running.
	ErrFeedClosed = errors.New("powermanager: bounds feed closed")
	// ErrNoBounds is returned when a new group's first bounds did not arrive
	// in time.
	ErrNoBounds = errors.New("powermanager: no bounds received")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("powermanager: already running")
)
