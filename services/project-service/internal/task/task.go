package task

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("task not found")

type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusStarted Status = "STARTED"
	StatusClosed  Status = "CLOSED"
)

// Task is the snapshot of a task aggregate.
type Task struct {
	Identifier  uuid.UUID `json:"identifier"`
	Version     int64     `json:"version"`
	Project     uuid.UUID `json:"project"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
}

// Domain events. Each carries the state of the task after the change.
type (
	Created       struct{ Task Task }
	Updated       struct{ Task Task }
	StatusChanged struct{ Task Task }
)

type Event interface {
	state() Task
	name() string
}

func (e Created) state() Task { return e.Task }
func (e Created) name() string { return EventCreated }

func (e Updated) state() Task { return e.Task }
func (e Updated) name() string { return EventUpdated }

func (e StatusChanged) state() Task { return e.Task }
func (e StatusChanged) name() string {
	if e.Task.Status == StatusClosed {
		return EventClosed
	}
	return EventStarted
}
