// Package eventstore applies domain events to snapshot stores and records them
// in the transactional outbox within one database transaction.
//
// A command handler emits an event on a Bus. The bus routes it to the single
// SnapshotStore that owns the aggregate type, saves the serialized key and
// value through the Store into the outbox and finally notifies in-process
// listeners. Events replayed from the topic by the RestoreAdapter only reach
// the snapshot stores.
package eventstore
