package eventstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Source tells whether an event comes from a live command or a replay.
type Source int

const (
	Online Source = iota
	Restore
)

func (s Source) String() string {
	switch s {
	case Online:
		return "online"
	case Restore:
		return "restore"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// AggregateIdentifier names one version of an aggregate. Version 0 is creation.
type AggregateIdentifier struct {
	Type       string    `json:"type"`
	Identifier uuid.UUID `json:"identifier"`
	Version    int64     `json:"version"`
}

func (a AggregateIdentifier) String() string {
	return fmt.Sprintf("%s/%s@%d", a.Type, a.Identifier, a.Version)
}

func (a AggregateIdentifier) validate() error {
	if a.Version < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeVersion, a)
	}
	return nil
}

// MessageKey is the key of a message on the topic. The root context
// identifier decides the partition.
type MessageKey interface {
	RootContextIdentifier() uuid.UUID
}

// AggregateEventMessageKey keys an event of an aggregate at a given version.
type AggregateEventMessageKey struct {
	AggregateIdentifier AggregateIdentifier
	RootContextID       uuid.UUID
}

func (k AggregateEventMessageKey) RootContextIdentifier() uuid.UUID { return k.RootContextID }

func (k AggregateEventMessageKey) WithVersion(version int64) AggregateEventMessageKey {
	k.AggregateIdentifier.Version = version
	return k
}

func (k AggregateEventMessageKey) String() string {
	return fmt.Sprintf("%s (root %s)", k.AggregateIdentifier, k.RootContextID)
}

// EventMessageKey keys a message that belongs to no aggregate. Such messages
// are never replayed.
type EventMessageKey struct {
	RootContextID uuid.UUID
}

func (k EventMessageKey) RootContextIdentifier() uuid.UUID { return k.RootContextID }

func (k EventMessageKey) String() string {
	return fmt.Sprintf("event (root %s)", k.RootContextID)
}

// Message is the payload of an event. A nil Message is a tombstone.
type Message interface{}

// RawRecord is a record as read from the topic.
type RawRecord struct {
	Key   []byte
	Value []byte
}

type transactionIDKey struct{}

// WithTransactionIdentifier attaches a business transaction identifier that is
// stored with every outbox record saved under ctx.
func WithTransactionIdentifier(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, transactionIDKey{}, id)
}

func TransactionIdentifier(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(transactionIDKey{}).(uuid.UUID)
	return id, ok
}
