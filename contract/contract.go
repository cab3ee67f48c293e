package contract

import (
	"context"
	"reflect"

	"chathub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives domain events for one consumer (a live connection,
// a projection, a log...). Consume must not block past ctx.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks live connections and their room subscriptions.
// Connections are referenced by ID only; the registry never owns or
// closes the underlying transport.
type IRegistry interface {
	Register(connID string, sink EventSink)
	Join(channelID, connID string)
	Leave(channelID, connID string)
	DropConnection(connID string)
	SinksForChannel(channelID string) []EventSink
	AllSinks() []EventSink
}

// IPresence tracks which users hold at least one live connection.
// Register and Deregister report offline->online and online->offline
// transitions so callers can broadcast roster updates.
type IPresence interface {
	Register(connID, userID string) bool
	Deregister(connID, userID string) bool
	IsOnline(userID string) bool
	Snapshot() map[string]bool
}
