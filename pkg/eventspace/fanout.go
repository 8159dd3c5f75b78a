package eventspace

// deliver filters an event through a watcher's filter and appends the
// resulting notification to the watcher's local queue and its subscription's
// global queue as one atomic step. A filter failure mutates neither queue.
func (m *Manager) deliver(event NodeID, item *MonitoredItem) error {
	fields, err := m.FilterEvent(event, &item.filter)
	if err != nil {
		return err
	}

	item.ensureQueueSpace()
	item.enqueue(&Notification{Fields: fields, item: item})
	return nil
}

// fanOut walks the ancestor closure of origin and delivers the event to
// every watcher registered on any ancestor, in registration order per node.
// The first delivery error aborts the remaining fan-out; notifications
// already enqueued are kept. Returns the number of deliveries made.
func (m *Manager) fanOut(event, origin NodeID) (int, error) {
	delivered := 0
	for _, ancestor := range ancestorClosure(m.store, origin) {
		for _, item := range m.store.Watchers(ancestor) {
			if err := m.deliver(event, item); err != nil {
				return delivered, &DeliveryError{
					Subscription: item.sub.id,
					Ancestor:     ancestor,
					Err:          err,
				}
			}
			delivered++
		}
	}
	return delivered, nil
}
