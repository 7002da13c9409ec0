package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	platformmetrics "attestry/internal/platform/metrics"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/requestcontext"
)

// Store is the persistence boundary for the trail. Append must be durable;
// ListByDegree returns events newest first.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDegree(ctx context.Context, degreeID id.DegreeID) ([]Event, error)
}

// Publisher fans appended events out to an external sink (Kafka). Fan-out is
// best-effort: the local append is the source of truth for QueryByDegree.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Notifier receives every appended event. It replaces the ledger-style event
// emission of chain deployments: collaborators subscribe here instead of to
// a gossip layer. Must not block; long work belongs on the subscriber's side.
type Notifier func(Event)

// Trail is the append-only audit log, keyed by degree.
type Trail struct {
	store     Store
	logger    *slog.Logger
	metrics   *platformmetrics.Metrics
	publisher Publisher
	notifier  Notifier
}

// Option configures a Trail.
type Option func(*Trail)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Trail) {
		t.logger = logger
	}
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(t *Trail) {
		t.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(t *Trail) {
		t.publisher = p
	}
}

func WithNotifier(n Notifier) Option {
	return func(t *Trail) {
		t.notifier = n
	}
}

func NewTrail(store Store, opts ...Option) *Trail {
	t := &Trail{store: store}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append persists one event, assigning an ID and timestamp when unset.
// Persistence is fail-closed; Kafka fan-out and the notifier are best-effort
// and run only after the append succeeds.
func (t *Trail) Append(ctx context.Context, event Event) error {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := t.store.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
	}
	if t.metrics != nil {
		t.metrics.IncrementAuditEventsAppended()
	}

	if t.publisher != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			err = t.publisher.Publish(ctx, event.DegreeID.String(), payload)
		}
		if err != nil && t.logger != nil {
			t.logger.WarnContext(ctx, "audit event fan-out failed",
				"event_id", event.ID.String(),
				"degree_id", event.DegreeID.String(),
				"error", err,
			)
		}
	}

	if t.notifier != nil {
		t.notifier(event)
	}
	return nil
}

// QueryByDegree returns the degree's full trail, newest first.
func (t *Trail) QueryByDegree(ctx context.Context, degreeID id.DegreeID) ([]Event, error) {
	events, err := t.store.ListByDegree(ctx, degreeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit trail")
	}
	return events, nil
}
