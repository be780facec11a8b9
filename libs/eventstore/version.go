package eventstore

import "fmt"

// ShouldApply decides whether an event at eventVersion is applied to a
// snapshot currently at *current (nil when there is no snapshot).
//
// Online events must follow the snapshot version exactly. Replayed events
// are applied only when they are newer than the snapshot, which makes replay
// idempotent under redelivery.
func ShouldApply(current *int64, eventVersion int64, deleteEvent bool, src Source) (bool, error) {
	if current == nil && deleteEvent {
		if src == Restore {
			return false, nil
		}
		return false, fmt.Errorf("%w: delete at version %d", ErrSnapshotMissing, eventVersion)
	}

	if src == Restore {
		return current == nil || eventVersion > *current, nil
	}

	if current == nil {
		if eventVersion != 0 {
			return false, fmt.Errorf("%w: version %d without snapshot", ErrVersionConflict, eventVersion)
		}
		return true, nil
	}
	if eventVersion != *current+1 {
		return false, fmt.Errorf("%w: version %d on snapshot at %d", ErrVersionConflict, eventVersion, *current)
	}
	return true, nil
}
