package kafka

import (
	"context"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// Publisher is the part of *Producer the reload publisher needs.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// EventRecorder counts published and consumed events.
type EventRecorder interface {
	ObserveEvent(published, success bool)
}

// ReloadHandler reacts to a peer's reload.
type ReloadHandler interface {
	HandleReloadEvent(ctx context.Context, ev chemical.ReloadEvent) error
}

// ReloadPublisher announces local reloads on the reload topic, keyed by the
// originating instance so one instance's events stay ordered.
type ReloadPublisher struct {
	producer Publisher
	topic    string
	source   string
	recorder EventRecorder
	logger   logging.Logger
}

// NewReloadPublisher creates a publisher. An empty topic selects
// TopicReloadEvents.
func NewReloadPublisher(p Publisher, topic, source string, recorder EventRecorder, logger logging.Logger) *ReloadPublisher {
	if topic == "" {
		topic = TopicReloadEvents
	}
	return &ReloadPublisher{
		producer: p,
		topic:    topic,
		source:   source,
		recorder: recorder,
		logger:   logging.OrNop(logger).Named("reload_publisher"),
	}
}

// PublishReload implements lookup.ReloadPublisher.
func (r *ReloadPublisher) PublishReload(ctx context.Context, ev chemical.ReloadEvent) (err error) {
	defer func() {
		if r.recorder != nil {
			r.recorder.ObserveEvent(true, err == nil)
		}
	}()

	env, err := NewEventEnvelope(EventTypeReload, r.source, ev)
	if err != nil {
		return err
	}
	env.EventID = ev.EventID
	env.Timestamp = ev.OccurredAt

	msg, err := env.ToMessage(r.topic, []byte(ev.Origin))
	if err != nil {
		return err
	}
	if err := r.producer.Publish(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish reload event")
	}
	r.logger.Info("reload event published",
		logging.String("event_id", ev.EventID),
		logging.Int64("snapshot_version", int64(ev.SnapshotVersion)))
	return nil
}

// NewReloadMessageHandler decodes reload envelopes and hands them to h.
// Envelopes of other event types are skipped. Undecodable records are
// logged and acknowledged since retrying them cannot succeed.
func NewReloadMessageHandler(h ReloadHandler, recorder EventRecorder, logger logging.Logger) MessageHandler {
	logger = logging.OrNop(logger).Named("reload_consumer")
	observe := func(success bool) {
		if recorder != nil {
			recorder.ObserveEvent(false, success)
		}
	}

	return func(ctx context.Context, msg *Message) error {
		env, err := MessageToEventEnvelope(msg)
		if err != nil {
			logger.Warn("dropping undecodable record", logging.Int64("offset", msg.Offset), logging.Err(err))
			observe(false)
			return nil
		}
		if env.EventType != EventTypeReload {
			logger.Debug("skipping event", logging.String("event_type", env.EventType))
			return nil
		}
		var ev chemical.ReloadEvent
		if err := env.DecodePayload(&ev); err != nil {
			logger.Warn("dropping reload event with bad payload", logging.String("event_id", env.EventID), logging.Err(err))
			observe(false)
			return nil
		}
		if err := h.HandleReloadEvent(ctx, ev); err != nil {
			observe(false)
			return err
		}
		observe(true)
		return nil
	}
}
