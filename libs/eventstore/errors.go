package eventstore

import "errors"

var (
	ErrNoMapper               = errors.New("no mapper for event")
	ErrAmbiguousMapper        = errors.New("more than one mapper for event")
	ErrNoSnapshotStore        = errors.New("no snapshot store handles message")
	ErrAmbiguousSnapshotStore = errors.New("more than one snapshot store handles message")
	ErrTombstoneUnsupported   = errors.New("tombstone messages are not supported")

	ErrOperationsBlocked = errors.New("operations are blocked for maintenance")

	ErrNoTransaction     = errors.New("no active transaction")
	ErrTransactionActive = errors.New("transaction already active")

	ErrVersionConflict      = errors.New("event version does not follow snapshot version")
	ErrSnapshotMissing      = errors.New("snapshot to delete does not exist")
	ErrUnknownAggregateType = errors.New("unknown aggregate type")
	ErrNegativeVersion      = errors.New("aggregate version is negative")
	ErrNotAggregateKey      = errors.New("message key is not an aggregate event key")
)
