package project

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("project not found")

// Project is the snapshot of a project aggregate. A project is its own root
// context.
type Project struct {
	Identifier  uuid.UUID `json:"identifier"`
	Version     int64     `json:"version"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

type (
	Created struct{ Project Project }
	Updated struct{ Project Project }
	Deleted struct{ Project Project }
)

type Event interface {
	state() Project
	name() string
}

func (e Created) state() Project { return e.Project }
func (e Created) name() string   { return EventCreated }
func (e Updated) state() Project { return e.Project }
func (e Updated) name() string   { return EventUpdated }
func (e Deleted) state() Project { return e.Project }
func (e Deleted) name() string   { return EventDeleted }
