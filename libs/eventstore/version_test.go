package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

func version(v int64) *int64 { return &v }

func TestShouldApply(t *testing.T) {
	cases := []struct {
		name      string
		current   *int64
		event     int64
		delete    bool
		src       eventstore.Source
		wantApply bool
		wantErr   error
	}{
		{name: "online create", event: 0, src: eventstore.Online, wantApply: true},
		{name: "online create with version", event: 3, src: eventstore.Online, wantErr: eventstore.ErrVersionConflict},
		{name: "online next version", current: version(2), event: 3, src: eventstore.Online, wantApply: true},
		{name: "online duplicate", current: version(2), event: 2, src: eventstore.Online, wantErr: eventstore.ErrVersionConflict},
		{name: "online gap", current: version(2), event: 5, src: eventstore.Online, wantErr: eventstore.ErrVersionConflict},
		{name: "online delete missing", event: 4, delete: true, src: eventstore.Online, wantErr: eventstore.ErrSnapshotMissing},
		{name: "online delete", current: version(3), event: 4, delete: true, src: eventstore.Online, wantApply: true},
		{name: "restore without snapshot", event: 7, src: eventstore.Restore, wantApply: true},
		{name: "restore newer", current: version(1), event: 4, src: eventstore.Restore, wantApply: true},
		{name: "restore duplicate", current: version(4), event: 4, src: eventstore.Restore},
		{name: "restore older", current: version(4), event: 2, src: eventstore.Restore},
		{name: "restore delete missing", event: 4, delete: true, src: eventstore.Restore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apply, err := eventstore.ShouldApply(tc.current, tc.event, tc.delete, tc.src)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantApply, apply)
		})
	}
}
