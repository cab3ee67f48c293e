package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chathub/contract"
	"chathub/domain"
	"chathub/domain/event"
	"chathub/projection"
	"chathub/repositories"
	"chathub/runtime/workers"
)

// Orchestrator owns the engine: the presence tracker, the room
// registry, the command and event channels, and the supervised workers
// that move messages from ingestion to fan-out. Sessions talk to the
// engine exclusively through it; no component reaches into another's
// internal state.
type Orchestrator struct {
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *Registry
	presence       *Presence
	roster         *projection.Roster
	messages       repositories.IMessageRepository
	commands       chan domain.Command
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
	healthInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry *Registry, presence *Presence, roster *projection.Roster,
	messages repositories.IMessageRepository,
	bufferSize int, sinkTimeout, healthInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		presence:       presence,
		roster:         roster,
		messages:       messages,
		commands:       make(chan domain.Command, bufferSize),
		events:         make(chan event.DomainEvent, bufferSize),
		sinkTimeout:    sinkTimeout,
		healthInterval: healthInterval,
	}
}

// Add registers permanent sinks that receive every event alongside the
// per-connection audience.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Dispatch hands a command to the ingestion pipeline without blocking
// the calling session. A full pipeline drops the command.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.commands <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Command channel full for channel %s, dropping command", cmd.Channel()))
	}
}

// ConnectSession binds an authenticated connection to the engine. When
// this is the user's first live connection, every client gets a fresh
// roster broadcast.
func (o *Orchestrator) ConnectSession(connID string, identity domain.Identity, sink contract.EventSink) {
	o.registry.Register(connID, sink)
	if wentOnline := o.presence.Register(connID, identity.ID); wentOnline {
		o.emitPresence(identity.ID, true)
	}
}

// DisconnectSession tears the connection out of every room, then out of
// presence. Broadcasts a roster update only on the online->offline
// transition, so closing one of two tabs stays silent.
func (o *Orchestrator) DisconnectSession(connID, userID string) {
	o.registry.DropConnection(connID)
	if wentOffline := o.presence.Deregister(connID, userID); wentOffline {
		o.emitPresence(userID, false)
	}
}

func (o *Orchestrator) JoinChannel(channelID, connID string) {
	o.registry.Join(channelID, connID)
}

func (o *Orchestrator) LeaveChannel(channelID, connID string) {
	o.registry.Leave(channelID, connID)
}

// History serves one page of persisted channel history.
func (o *Orchestrator) History(q domain.HistoryQuery) ([]repositories.StoredMessage, int, bool, error) {
	return o.messages.ListPage(q.ChannelID, q.Page, q.PageSize)
}

// Roster returns the current full roster view.
func (o *Orchestrator) Roster() ([]domain.RosterEntry, error) {
	return o.roster.Build()
}

func (o *Orchestrator) IsOnline(userID string) bool {
	return o.presence.IsOnline(userID)
}

func (o *Orchestrator) emitPresence(userID string, isOnline bool) {
	entries, err := o.roster.Build()
	if err != nil {
		// Best effort: the transition is still announced, the full
		// directory join just comes back empty.
		o.log.Error("Roster build failed", "user_id", userID, "error", err)
	}
	evt := event.PresenceChanged{UserID: userID, IsOnline: isOnline, Roster: entries}
	select {
	case o.events <- evt:
	default:
		o.log.Warn("Event channel full, dropping presence update", "user_id", userID)
	}
}

// Start wires the ingestion, fanout, and health workers under the
// supervisor and runs them in the background until ctx is canceled.
func (o *Orchestrator) Start(ctx context.Context) {
	ingestion := workers.NewIngestionWorker(o.log, o.commands, o.events, o.messages, nil)
	fanout := workers.NewEventFanout(o.log, o.registry, o.events, nil, o.permanentSinks, o.sinkTimeout)
	health := workers.NewHealthWorker(o.log, o.healthInterval, o.Gauges)

	o.supervisor.Add(ingestion, fanout, health)

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
}

func (o *Orchestrator) Gauges() workers.Gauges {
	return workers.Gauges{
		Sessions:    o.registry.SessionCount(),
		Rooms:       o.registry.RoomCount(),
		OnlineUsers: o.presence.OnlineCount(),
	}
}

// Stop initiates a graceful shutdown; workers drain and exit.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
