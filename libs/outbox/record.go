package outbox

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrKeyTooLarge   = errors.New("outbox event key too large")
	ErrValueTooLarge = errors.New("outbox event value too large")
)

const mib = 1024 * 1024

// Record is one row of the outbox table. A nil EventValue is a tombstone.
type Record struct {
	TraceHeaderKey        string
	TraceHeaderValue      string
	PartitionNumber       int
	EventKey              []byte
	EventValue            []byte
	TransactionIdentifier *uuid.UUID
}

func (r Record) Tombstone() bool {
	return r.EventValue == nil
}

// Limits bound the serialized size of a record so the relay never forwards a
// message the broker would reject.
type Limits struct {
	MaxMessageSize    int `env:"OUTBOX_MAX_MESSAGE_SIZE" envDefault:"8388608"`
	MessageBufferSize int `env:"OUTBOX_MESSAGE_BUFFER_SIZE" envDefault:"1048576"`
	MaxKeySize        int `env:"OUTBOX_MAX_KEY_SIZE" envDefault:"1048576"`
}

func DefaultLimits() Limits {
	return Limits{MaxMessageSize: 8 * mib, MessageBufferSize: mib, MaxKeySize: mib}
}

// MaxValueSize is what remains of the message size once the key budget and
// the safety buffer are reserved.
func (l Limits) MaxValueSize() int {
	return l.MaxMessageSize - l.MaxKeySize - l.MessageBufferSize
}

func (l Limits) Validate(r Record) error {
	if len(r.EventKey) > l.MaxKeySize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrKeyTooLarge, len(r.EventKey), l.MaxKeySize)
	}
	if limit := l.MaxValueSize(); len(r.EventValue) > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrValueTooLarge, len(r.EventValue), limit)
	}
	return nil
}
