package eventstore

import "fmt"

// Mapper turns a domain event into the key and value of its message.
type Mapper interface {
	CanMap(event any) bool
	MapToKey(event any, version int64) (MessageKey, error)
	MapToValue(event any, version int64) (Message, error)
}

type Outcome int

const (
	NotFound Outcome = iota
	Ambiguous
	Found
)

// Resolution is the result of looking up the mapper for an event. Mapper is
// set only when Outcome is Found.
type Resolution struct {
	Outcome Outcome
	Mapper  Mapper
}

type MapperRegistry struct {
	mappers []Mapper
}

func NewMapperRegistry(mappers ...Mapper) *MapperRegistry {
	return &MapperRegistry{mappers: mappers}
}

func (r *MapperRegistry) Resolve(event any) Resolution {
	var found Mapper
	for _, m := range r.mappers {
		if !m.CanMap(event) {
			continue
		}
		if found != nil {
			return Resolution{Outcome: Ambiguous}
		}
		found = m
	}
	if found == nil {
		return Resolution{Outcome: NotFound}
	}
	return Resolution{Outcome: Found, Mapper: found}
}

// Lookup resolves the mapper for event and converts the non-found outcomes
// into errors.
func (r *MapperRegistry) Lookup(event any) (Mapper, error) {
	res := r.Resolve(event)
	switch res.Outcome {
	case Found:
		return res.Mapper, nil
	case Ambiguous:
		return nil, fmt.Errorf("%w: %T", ErrAmbiguousMapper, event)
	default:
		return nil, fmt.Errorf("%w: %T", ErrNoMapper, event)
	}
}

// TypedMapper maps events of the concrete type E.
type TypedMapper[E any] struct {
	Key   func(event E, version int64) MessageKey
	Value func(event E, version int64) Message
}

func (m TypedMapper[E]) CanMap(event any) bool {
	_, ok := event.(E)
	return ok
}

func (m TypedMapper[E]) MapToKey(event any, version int64) (MessageKey, error) {
	e, ok := event.(E)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoMapper, event)
	}
	return m.Key(e, version), nil
}

func (m TypedMapper[E]) MapToValue(event any, version int64) (Message, error) {
	e, ok := event.(E)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoMapper, event)
	}
	return m.Value(e, version), nil
}
