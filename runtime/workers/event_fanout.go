package workers

import (
	"context"
	"log/slog"
	"time"

	"chathub/contract"
	"chathub/domain/event"
)

// EventFanout delivers domain events to their audience: channel-scoped
// events go to the sinks currently subscribed to that room, global
// events (presence) go to every live connection. Permanent sinks
// (projections, logs) receive everything.
//
// Best-effort fan-out: no delivery guarantees, ordering across distinct
// recipients is unspecified, and a slow sink is cut off by the timeout
// rather than allowed to stall the stream. EventFanout is not a broker.
type EventFanout struct {
	Log            *slog.Logger
	registry       contract.IRegistry
	DomainEvent    chan event.DomainEvent
	TelemetryEvent chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	domainEvent, telemetryEvent chan event.DomainEvent,
	permanentSinks []contract.EventSink, sinkTimeout time.Duration) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = 5 * time.Second
	}
	return &EventFanout{
		Log:            log,
		registry:       registry,
		DomainEvent:    domainEvent,
		TelemetryEvent: telemetryEvent,
		permanentSinks: permanentSinks,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.DomainEvent:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
			if w.TelemetryEvent != nil {
				select {
				case w.TelemetryEvent <- evt:
				default:
					w.Log.Debug("Telemetry event lost")
				}
			}
		}
	}
}

// Fanout resolves the audience at delivery time, so a connection that
// unsubscribed after the event was emitted is skipped and one that was
// subscribed throughout is never missed.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	var audience []contract.EventSink
	if channelID := evt.Channel(); channelID != "" {
		audience = w.registry.SinksForChannel(channelID)
	} else {
		audience = w.registry.AllSinks()
	}

	for _, sink := range append(audience, w.permanentSinks...) {
		w.consume(ctx, sink, evt)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.Log.Warn("Sink did not consume event", "error", err)
	}
}
