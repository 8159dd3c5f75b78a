package eventspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventspace/pkg/eventspace/history"
)

func TestNewManager_NilStorePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewManager(nil)
	})
}

func TestCreateEvent(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)
	require.True(t, model.store.Exists(event))

	idNode, err := findEventProperty(model.store, event, []string{PropEventID})
	require.NoError(t, err)
	idValue, err := model.store.ReadValue(idNode)
	require.NoError(t, err)
	assert.Len(t, idValue, EventIDLength)

	typeNode, err := findEventProperty(model.store, event, []string{PropEventType})
	require.NoError(t, err)
	typeValue, err := model.store.ReadValue(typeNode)
	require.NoError(t, err)
	assert.Equal(t, BaseEventType, typeValue)
}

func TestCreateEvent_RejectsNonEventType(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)
	before := model.store.Len()

	_, err := m.CreateEvent(context.Background(), model.plant)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, before, model.store.Len(), "failed creation leaves the store unmodified")
}

func TestCreateEvent_NotVisibleUntilTriggered(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	_, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)
	assert.Zero(t, item.QueueLen())
}

func TestTriggerEvent_RejectsOriginOutsideObjects(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)

	_, err = m.TriggerEvent(context.Background(), event, BaseEventType)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, item.QueueLen(), "nothing may be delivered on a failed trigger")
	assert.True(t, model.store.Exists(event))
}

func TestTriggerEvent_UnknownEvent(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	_, err := m.TriggerEvent(context.Background(), "no-such-event", model.boiler)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestTriggerEvent_DeliversToWatcherOnOrigin is the end-to-end happy path: a
// two-clause filter where the second clause names a property the event does
// not have.
func TestTriggerEvent_DeliversToWatcherOnOrigin(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventID, "Message"))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)

	eventID, err := m.TriggerEvent(context.Background(), event, model.boiler)
	require.NoError(t, err)

	require.Equal(t, 1, item.QueueLen())
	fields := item.Notifications()[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, eventID.Bytes(), fields[0])
	assert.Nil(t, fields[1], "missing property yields an empty field")

	assert.False(t, model.store.Exists(event), "instance is torn down after delivery")
}

// TestTriggerEvent_FansOutToAncestors: watchers anywhere on the origin's
// containment chain each get their own notification.
func TestTriggerEvent_FansOutToAncestors(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	boilerSub := NewSubscription("boiler-sub")
	boilerItem := boilerSub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, boilerItem))

	plantSub := NewSubscription("plant-sub")
	plantItem := plantSub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.plant, plantItem))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)
	_, err = m.TriggerEvent(context.Background(), event, model.boiler)
	require.NoError(t, err)

	assert.Equal(t, 1, boilerItem.QueueLen())
	assert.Equal(t, 1, plantItem.QueueLen())
	assert.Equal(t, 2, boilerSub.GlobalQueueLen()+plantSub.GlobalQueueLen())
}

func TestTriggerEvent_PopulatesSourceAndReceiveTime(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropSourceNode, PropReceiveTime))
	require.NoError(t, model.store.RegisterWatcher(model.line, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)
	_, err = m.TriggerEvent(context.Background(), event, model.boiler)
	require.NoError(t, err)

	require.Equal(t, 1, item.QueueLen())
	fields := item.Notifications()[0].Fields
	assert.Equal(t, model.boiler, fields[0])
	assert.Equal(t, fixed, fields[1])
}

// TestTriggerEvent_PartialDelivery: a delivery failure aborts the remaining
// fan-out but keeps earlier deliveries, and the instance survives for
// diagnosis.
func TestTriggerEvent_PartialDelivery(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	okSub := NewSubscription("ok-sub")
	okItem := okSub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, okItem))

	badFilter := selectFilter(PropEventID)
	badFilter.WhereClause = []ContentFilterElement{{Operator: "OfType"}}
	badSub := NewSubscription("bad-sub")
	badItem := badSub.NewMonitoredItem(badFilter)
	require.NoError(t, model.store.RegisterWatcher(model.line, badItem))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)

	_, err = m.TriggerEvent(context.Background(), event, model.boiler)
	assert.ErrorIs(t, err, ErrNotSupported)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, "bad-sub", deliveryErr.Subscription)
	assert.Equal(t, model.line, deliveryErr.Ancestor)

	assert.Equal(t, 1, okItem.QueueLen(), "earlier deliveries are kept")
	assert.Zero(t, badItem.QueueLen())
	assert.True(t, model.store.Exists(event))
}

func TestTriggerEvent_EmptyFilterFailsDelivery(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(EventFilter{})
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)

	_, err = m.TriggerEvent(context.Background(), event, model.boiler)
	assert.ErrorIs(t, err, ErrEventFilterInvalid)
	assert.Zero(t, item.QueueLen())
	assert.Zero(t, sub.GlobalQueueLen())
}

// TestTriggerEvent_IDExtractionFailure: when the EventId property cannot be
// read back after fan-out, the error is reported but the instance stays in
// the store.
func TestTriggerEvent_IDExtractionFailure(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventType))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)

	idNode, err := findEventProperty(model.store, event, []string{PropEventID})
	require.NoError(t, err)
	require.NoError(t, model.store.DeleteNode(idNode))

	_, err = m.TriggerEvent(context.Background(), event, model.boiler)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, item.QueueLen(), "delivery happened before extraction")
	assert.True(t, model.store.Exists(event), "instance is left alive for diagnosis")
}

func TestTriggerEvent_AppendsHistory(t *testing.T) {
	model := newPlantModel(t)
	journal := history.NewMemoryStore()
	m := NewManager(model.store, WithHistory(journal))
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.boiler, item))

	event, err := m.CreateEvent(context.Background(), BaseEventType)
	require.NoError(t, err)
	eventID, err := m.TriggerEvent(context.Background(), event, model.boiler)
	require.NoError(t, err)

	count, err := journal.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	records, err := journal.List(0)
	require.NoError(t, err)
	rec := records[0]
	assert.Equal(t, eventID.String(), rec.EventID)
	assert.Equal(t, string(BaseEventType), rec.EventType)
	assert.Equal(t, string(model.boiler), rec.Origin)
	assert.Equal(t, fixed, rec.ReceiveTime)
	assert.Equal(t, 1, rec.Delivered)
}

// TestTriggerEvent_PublishCycle runs the full pipeline into a publish drain.
func TestTriggerEvent_PublishCycle(t *testing.T) {
	model := newPlantModel(t)
	m := NewManager(model.store)

	sub := NewSubscription("sub-1")
	item := sub.NewMonitoredItem(selectFilter(PropEventID))
	require.NoError(t, model.store.RegisterWatcher(model.plant, item))

	for i := 0; i < 3; i++ {
		event, err := m.CreateEvent(context.Background(), BaseEventType)
		require.NoError(t, err)
		_, err = m.TriggerEvent(context.Background(), event, model.boiler)
		require.NoError(t, err)
	}

	batch := sub.Publish(0)
	assert.Len(t, batch, 3)
	assert.Zero(t, item.QueueLen())
	assert.Zero(t, sub.GlobalQueueLen())
}
