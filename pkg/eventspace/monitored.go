package eventspace

// Watchers and their queues.
//
// A Notification is shared by exactly two containers for its whole lifetime:
// the local queue of the monitored item that owns it and the global queue of
// that item's subscription. Both references are always taken and released
// together, so the two queue sizes move in lockstep.
//
// None of the types here lock. The whole subsystem runs on the single logical
// thread that invokes TriggerEvent; callers wanting concurrent publishing
// must serialize externally.

// DefaultQueueLength is the local queue capacity a monitored item gets when
// none is configured.
const DefaultQueueLength = 100

// Notification is one filtered event delivered to a watcher.
type Notification struct {
	// Fields is the field list produced by the watcher's filter.
	Fields FieldList

	item *MonitoredItem
}

// Item returns the monitored item this notification belongs to.
func (n *Notification) Item() *MonitoredItem {
	return n.item
}

// MonitoredItem is a client-registered watcher: an event filter plus a
// bounded local queue of notifications awaiting publication.
type MonitoredItem struct {
	filter        EventFilter
	sub           *Subscription
	maxQueueLen   int
	discardOldest bool
	queue         []*Notification
}

// ItemOption configures a monitored item at creation.
type ItemOption func(*MonitoredItem)

// WithQueueLength sets the local queue capacity.
// Default: DefaultQueueLength. Zero or negative means unbounded.
func WithQueueLength(n int) ItemOption {
	return func(mi *MonitoredItem) {
		mi.maxQueueLen = n
	}
}

// WithDiscardNewest makes queue overflow drop the incoming side of the queue
// instead of the oldest entry.
func WithDiscardNewest() ItemOption {
	return func(mi *MonitoredItem) {
		mi.discardOldest = false
	}
}

// Filter returns the item's event filter.
func (mi *MonitoredItem) Filter() EventFilter {
	return mi.filter
}

// Subscription returns the subscription that owns this item.
func (mi *MonitoredItem) Subscription() *Subscription {
	return mi.sub
}

// QueueLen returns the current local queue size.
func (mi *MonitoredItem) QueueLen() int {
	return len(mi.queue)
}

// Notifications returns a copy of the local queue, oldest first.
func (mi *MonitoredItem) Notifications() []*Notification {
	out := make([]*Notification, len(mi.queue))
	copy(out, mi.queue)
	return out
}

// ensureQueueSpace trims the local queue to leave room for one insertion,
// per the item's overflow policy. Every trimmed notification is released
// from the subscription's global queue in the same step.
func (mi *MonitoredItem) ensureQueueSpace() {
	if mi.maxQueueLen <= 0 {
		return
	}
	for len(mi.queue) >= mi.maxQueueLen {
		var victim *Notification
		if mi.discardOldest {
			victim = mi.queue[0]
			mi.queue = mi.queue[1:]
		} else {
			victim = mi.queue[len(mi.queue)-1]
			mi.queue = mi.queue[:len(mi.queue)-1]
		}
		mi.sub.removeGlobal(victim)
	}
}

// removeLocal drops a notification from the local queue.
func (mi *MonitoredItem) removeLocal(n *Notification) {
	for i, candidate := range mi.queue {
		if candidate == n {
			mi.queue = append(mi.queue[:i], mi.queue[i+1:]...)
			return
		}
	}
}

// enqueue appends a notification to the local queue and the subscription's
// global queue as one logical step.
func (mi *MonitoredItem) enqueue(n *Notification) {
	mi.queue = append(mi.queue, n)
	mi.sub.global = append(mi.sub.global, n)
}

// Subscription aggregates the deliveries of all its monitored items in a
// global queue, drained once per publish cycle.
type Subscription struct {
	id     string
	items  []*MonitoredItem
	global []*Notification
}

// NewSubscription creates an empty subscription.
func NewSubscription(id string) *Subscription {
	return &Subscription{id: id}
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// NewMonitoredItem creates a monitored item owned by this subscription.
// Register the item on an address-space node to start receiving events.
func (s *Subscription) NewMonitoredItem(filter EventFilter, opts ...ItemOption) *MonitoredItem {
	mi := &MonitoredItem{
		filter:        filter,
		sub:           s,
		maxQueueLen:   DefaultQueueLength,
		discardOldest: true,
	}
	for _, opt := range opts {
		opt(mi)
	}
	s.items = append(s.items, mi)
	return mi
}

// Items returns a copy of the subscription's monitored items.
func (s *Subscription) Items() []*MonitoredItem {
	out := make([]*MonitoredItem, len(s.items))
	copy(out, s.items)
	return out
}

// GlobalQueueLen returns the current global queue size.
func (s *Subscription) GlobalQueueLen() int {
	return len(s.global)
}

// Publish drains up to max notifications from the global queue, oldest
// first, releasing each one's paired local-queue reference. max <= 0 drains
// everything. This is what a publish cycle hands to the network layer.
func (s *Subscription) Publish(max int) []*Notification {
	n := len(s.global)
	if max > 0 && max < n {
		n = max
	}
	batch := make([]*Notification, n)
	copy(batch, s.global[:n])
	s.global = s.global[n:]

	for _, note := range batch {
		note.item.removeLocal(note)
	}
	return batch
}

// removeGlobal drops a notification from the global queue.
func (s *Subscription) removeGlobal(n *Notification) {
	for i, candidate := range s.global {
		if candidate == n {
			s.global = append(s.global[:i], s.global[i+1:]...)
			return
		}
	}
}
