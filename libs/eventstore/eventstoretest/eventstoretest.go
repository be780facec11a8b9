// Package eventstoretest provides in-memory doubles for the database side of
// the event store: a transactor whose outbox records and snapshot changes
// become visible only on commit, and a recording listener.
package eventstoretest

import (
	"context"
	"errors"
	"sync"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/eventstore"
	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/outbox"
)

type txKey struct{}

type tx struct {
	staged   []outbox.Record
	onCommit []func()
}

// Transactor is an in-memory eventstore.Transactor that also acts as the
// outbox.Writer. Records inserted in a transaction are kept only if it commits.
type Transactor struct {
	mu        sync.Mutex
	committed []outbox.Record
	commits   int
	rollbacks int
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.InTransaction(ctx) {
		return fn(ctx)
	}
	current := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, current)); err != nil {
		t.mu.Lock()
		t.rollbacks++
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.committed = append(t.committed, current.staged...)
	t.commits++
	t.mu.Unlock()
	for _, fn := range current.onCommit {
		fn()
	}
	return nil
}

func (t *Transactor) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*tx)
	return ok
}

func (t *Transactor) Insert(ctx context.Context, records ...outbox.Record) error {
	current, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		return eventstore.ErrNoTransaction
	}
	current.staged = append(current.staged, records...)
	return nil
}

// Records returns the committed outbox records in insertion order.
func (t *Transactor) Records() []outbox.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]outbox.Record(nil), t.committed...)
}

func (t *Transactor) Commits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commits
}

func (t *Transactor) Rollbacks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollbacks
}

// OnCommit defers fn until the transaction in ctx commits. Outside a
// transaction fn runs immediately.
func OnCommit(ctx context.Context, fn func()) {
	current, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		fn()
		return
	}
	current.onCommit = append(current.onCommit, fn)
}

// Recorder is a listener that keeps every notification. Err, if set, is
// returned from OnEvent after recording.
type Recorder struct {
	mu    sync.Mutex
	notes []eventstore.Notification
	Err   error
}

func (r *Recorder) OnEvent(_ context.Context, n eventstore.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.Err
}

func (r *Recorder) Notifications() []eventstore.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventstore.Notification(nil), r.notes...)
}

var ErrInjected = errors.New("injected failure")
