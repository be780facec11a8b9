package task

import (
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
)

const AggregateType = "TASK"

const (
	EventCreated = "CREATED"
	EventUpdated = "UPDATED"
	EventStarted = "STARTED"
	EventClosed  = "CLOSED"
)

// EventMessage is the value of a task message on the topic.
type EventMessage struct {
	Name      string `json:"name"`
	Aggregate Task   `json:"aggregate"`
}

// Key of a task message. Tasks are partitioned by their project so project
// and task events stay in order.
func Key(t Task) eventstore.AggregateEventMessageKey {
	return eventstore.AggregateEventMessageKey{
		AggregateIdentifier: eventstore.AggregateIdentifier{
			Type:       AggregateType,
			Identifier: t.Identifier,
			Version:    t.Version,
		},
		RootContextID: t.Project,
	}
}

func NewMapper() eventstore.Mapper {
	return eventstore.TypedMapper[Event]{
		Key: func(e Event, version int64) eventstore.MessageKey {
			t := e.state()
			t.Version = version
			return Key(t)
		},
		Value: func(e Event, version int64) eventstore.Message {
			t := e.state()
			t.Version = version
			return EventMessage{Name: e.name(), Aggregate: t}
		},
	}
}

func RegisterValues(codec *eventstore.Codec) {
	eventstore.RegisterValue[EventMessage](codec, AggregateType)
}
