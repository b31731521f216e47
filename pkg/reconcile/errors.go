package reconcile

import "errors"

var (
	// ErrDuplicateKey is logged when siblings share a key.
	ErrDuplicateKey = errors.New("reconcile: duplicate key")

	// ErrMissingHandle is logged when a node expected to be mounted has no
	// display unit.
	ErrMissingHandle = errors.New("reconcile: node has no display unit")

	// ErrUnknownKind is logged for nodes of an unknown kind.
	ErrUnknownKind = errors.New("reconcile: unknown node kind")
)
