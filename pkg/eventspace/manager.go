package eventspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/eventspace/pkg/eventspace/history"
	"github.com/randalmurphal/eventspace/pkg/eventspace/observability"
)

// Manager is the event lifecycle orchestrator. It creates event instances in
// the address space, triggers them (constant population, fan-out, id
// extraction, teardown), and records triggered events in the journal.
//
// All Manager operations are synchronous and run on the calling goroutine.
// The store enforces its own single-writer discipline; the Manager performs
// no locking.
type Manager struct {
	store   NodeStore
	log     *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	journal history.Store
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.log = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no metrics.
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(m *Manager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// WithSpanManager sets the tracing span manager. Default: no tracing.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(m *Manager) {
		if spans != nil {
			m.spans = spans
		}
	}
}

// WithHistory sets the event journal. Triggered events are recorded after a
// successful fan-out; journal failures are logged, never returned.
// Default: no journal.
func WithHistory(store history.Store) Option {
	return func(m *Manager) {
		m.journal = store
	}
}

// NewManager creates a Manager running against the given store.
// Panics if store is nil.
func NewManager(store NodeStore, opts ...Option) *Manager {
	if store == nil {
		panic("eventspace: store cannot be nil")
	}
	m := &Manager{
		store:   store,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateEvent allocates a new event instance of the given type in the
// address space. The instance is parentless and unreferenced; its EventId
// and EventType properties are populated immediately, and it is not visible
// to any watcher until it is triggered.
func (m *Manager) CreateEvent(ctx context.Context, eventType NodeID) (NodeID, error) {
	_, span := m.spans.StartCreateSpan(ctx, string(eventType))
	var err error
	defer func() {
		m.metrics.RecordEventCreated(ctx, string(eventType), err)
		m.spans.EndSpanWithError(span, err)
	}()

	if !isNodeInTree(m.store, eventType, BaseEventType, RefHasSubtype) {
		err = fmt.Errorf("event type %s must be a subtype of BaseEventType: %w",
			eventType, ErrInvalidArgument)
		return "", err
	}

	eventID := NewEventID()

	var event NodeID
	event, err = m.store.AddObject(eventType, eventID.String())
	if err != nil {
		return "", err
	}

	if err = m.writeProperty(event, PropEventID, eventID.Bytes()); err != nil {
		return "", err
	}
	if err = m.writeProperty(event, PropEventType, eventType); err != nil {
		return "", err
	}

	observability.LogEventCreated(m.log, string(event), string(eventType))
	return event, nil
}

// TriggerEvent fires a previously created event instance from an origin
// node: it populates the SourceNode and ReceiveTime constants, fans the
// filtered event out to every watcher on the origin's ancestor closure,
// extracts the event identifier, and deletes the instance.
//
// A delivery failure aborts the remaining fan-out but does not roll back
// earlier deliveries; callers must treat a returned error as "some watchers
// may have received the event". If id extraction fails the instance is left
// alive for diagnosis. A teardown failure is returned together with the
// extracted id.
func (m *Manager) TriggerEvent(ctx context.Context, event, origin NodeID) (EventID, error) {
	done := observability.TimedOperation()
	_, span := m.spans.StartTriggerSpan(ctx, string(event), string(origin))

	var err error
	delivered := 0
	defer func() {
		m.metrics.RecordEventTriggered(ctx, string(origin), delivered,
			time.Duration(done()*float64(time.Millisecond)), err)
		m.spans.EndSpanWithError(span, err)
	}()

	if !isNodeInTree(m.store, origin, ObjectsFolder, containmentReferences...) {
		err = fmt.Errorf("origin %s must lie under the Objects folder: %w",
			origin, ErrInvalidArgument)
		return EventID{}, err
	}

	receiveTime := m.now().UTC()
	if err = m.writeProperty(event, PropSourceNode, origin); err != nil {
		return EventID{}, err
	}
	if err = m.writeProperty(event, PropReceiveTime, receiveTime); err != nil {
		return EventID{}, err
	}

	delivered, err = m.fanOut(event, origin)
	if err != nil {
		observability.LogTriggerError(m.log, string(event), string(origin), delivered, err)
		return EventID{}, err
	}

	var eventID EventID
	eventID, err = m.readEventID(event)
	if err != nil {
		// Leave the instance in the store for diagnosis.
		observability.LogEventIDMissing(m.log, string(event), err)
		return EventID{}, err
	}

	eventType := m.readEventType(event)

	if err = m.store.DeleteNode(event); err != nil {
		observability.LogDeleteFailed(m.log, string(event), err)
		m.appendHistory(eventID, eventType, origin, receiveTime, delivered)
		return eventID, err
	}

	m.appendHistory(eventID, eventType, origin, receiveTime, delivered)
	observability.LogTriggerComplete(m.log, eventID.String(), string(origin), delivered, done())
	return eventID, nil
}

// writeProperty resolves a well-known property of an event instance and
// writes a value into it.
func (m *Manager) writeProperty(event NodeID, name string, value any) error {
	target, err := findEventProperty(m.store, event, []string{name})
	if err != nil {
		return err
	}
	return m.store.WriteValue(target, value)
}

// readEventID extracts the 16-byte identifier written by CreateEvent.
func (m *Manager) readEventID(event NodeID) (EventID, error) {
	target, err := findEventProperty(m.store, event, []string{PropEventID})
	if err != nil {
		return EventID{}, err
	}
	value, err := m.store.ReadValue(target)
	if err != nil {
		return EventID{}, err
	}
	raw, ok := value.([]byte)
	if !ok {
		return EventID{}, fmt.Errorf("event %s holds a malformed EventId: %w",
			event, ErrInvalidArgument)
	}
	return EventIDFromBytes(raw)
}

// readEventType returns the instance's type, best effort.
func (m *Manager) readEventType(event NodeID) NodeID {
	target, err := findEventProperty(m.store, event, []string{PropEventType})
	if err != nil {
		return ""
	}
	value, err := m.store.ReadValue(target)
	if err != nil {
		return ""
	}
	eventType, _ := value.(NodeID)
	return eventType
}

// appendHistory records a triggered event in the journal, best effort.
func (m *Manager) appendHistory(eventID EventID, eventType, origin NodeID, receiveTime time.Time, delivered int) {
	if m.journal == nil {
		return
	}
	rec := history.Record{
		EventID:     eventID.String(),
		EventType:   string(eventType),
		Origin:      string(origin),
		ReceiveTime: receiveTime,
		Delivered:   delivered,
	}
	if err := m.journal.Append(rec); err != nil {
		observability.LogHistoryError(m.log, rec.EventID, err)
	}
}
