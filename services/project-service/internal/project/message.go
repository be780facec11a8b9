package project

import (
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

const AggregateType = "PROJECT"

const (
	EventCreated = "CREATED"
	EventUpdated = "UPDATED"
	EventDeleted = "DELETED"
)

type EventMessage struct {
	Name      string  `json:"name"`
	Aggregate Project `json:"aggregate"`
}

func Key(p Project) eventstore.AggregateEventMessageKey {
	return eventstore.AggregateEventMessageKey{
		AggregateIdentifier: eventstore.AggregateIdentifier{
			Type:       AggregateType,
			Identifier: p.Identifier,
			Version:    p.Version,
		},
		RootContextID: p.Identifier,
	}
}

func NewMapper() eventstore.Mapper {
	return eventstore.TypedMapper[Event]{
		Key: func(e Event, version int64) eventstore.MessageKey {
			p := e.state()
			p.Version = version
			return Key(p)
		},
		Value: func(e Event, version int64) eventstore.Message {
			p := e.state()
			p.Version = version
			return EventMessage{Name: e.name(), Aggregate: p}
		},
	}
}

func RegisterValues(codec *eventstore.Codec) {
	eventstore.RegisterValue[EventMessage](codec, AggregateType)
}
