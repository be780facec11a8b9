package eventstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	kindAggregate = "AGGREGATE"
	kindEvent     = "EVENT"
)

type wireKey struct {
	Kind                  string               `json:"kind"`
	AggregateIdentifier   *AggregateIdentifier `json:"aggregateIdentifier,omitempty"`
	RootContextIdentifier uuid.UUID            `json:"rootContextIdentifier"`
}

// Codec serializes keys and values for the outbox and decodes records read
// back from the topic. Values are decoded by the aggregate type of their key,
// so every replayable aggregate type registers its value type.
type Codec struct {
	decoders map[string]func([]byte) (Message, error)
}

func NewCodec() *Codec {
	return &Codec{decoders: map[string]func([]byte) (Message, error){}}
}

// RegisterValue makes values of aggregateType decode into T.
func RegisterValue[T any](c *Codec, aggregateType string) {
	c.decoders[aggregateType] = func(data []byte) (Message, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (c *Codec) EncodeKey(key MessageKey) ([]byte, error) {
	var w wireKey
	switch k := key.(type) {
	case AggregateEventMessageKey:
		id := k.AggregateIdentifier
		w = wireKey{Kind: kindAggregate, AggregateIdentifier: &id, RootContextIdentifier: k.RootContextID}
	case EventMessageKey:
		w = wireKey{Kind: kindEvent, RootContextIdentifier: k.RootContextID}
	default:
		return nil, fmt.Errorf("unsupported message key %T", key)
	}
	return json.Marshal(w)
}

func (c *Codec) DecodeKey(data []byte) (MessageKey, error) {
	var w wireKey
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode message key: %w", err)
	}
	switch w.Kind {
	case kindAggregate:
		if w.AggregateIdentifier == nil {
			return nil, errors.New("decode message key: aggregate key without aggregate identifier")
		}
		return AggregateEventMessageKey{AggregateIdentifier: *w.AggregateIdentifier, RootContextID: w.RootContextIdentifier}, nil
	case kindEvent:
		return EventMessageKey{RootContextID: w.RootContextIdentifier}, nil
	default:
		return nil, fmt.Errorf("decode message key: %w: unknown kind %q", ErrNotAggregateKey, w.Kind)
	}
}

func (c *Codec) EncodeValue(value Message) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func (c *Codec) DecodeValue(aggregateType string, data []byte) (Message, error) {
	decode, ok := c.decoders[aggregateType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAggregateType, aggregateType)
	}
	v, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s value: %w", aggregateType, err)
	}
	return v, nil
}
