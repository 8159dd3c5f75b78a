/*
Package eventspace implements event notification for an address-space server.

# Overview

Servers expose a live graph of typed nodes (the address space). Transient
occurrences such as an alarm firing or a batch finishing are represented as
short-lived event instances in that graph. This package covers
their whole lifecycle: creating an instance of an event type, triggering it
from an origin node, filtering its attributes per watcher, fanning the
filtered notification out to every subscription watching the origin or any
of its structural ancestors, and tearing the instance down.

The object store behind the graph is an external collaborator behind the
NodeStore interface; MemStore is the in-memory implementation used by the
surrounding server and the tests.

# Basic Usage

Model the address space, register a watcher, then create and trigger events:

	store := eventspace.NewMemStore()
	plant, _ := store.AddFolder(eventspace.ObjectsFolder, "Plant")
	boiler, _ := store.AddObjectNode(plant, "Boiler1")

	sub := eventspace.NewSubscription("client-1")
	item := sub.NewMonitoredItem(eventspace.EventFilter{
	    SelectClauses: []eventspace.SelectOperand{
	        {TypeDefinition: eventspace.BaseEventType, BrowsePath: []string{"EventId"}},
	        {TypeDefinition: eventspace.BaseEventType, BrowsePath: []string{"Severity"}},
	    },
	})
	store.RegisterWatcher(boiler, item)

	mgr := eventspace.NewManager(store)
	event, err := mgr.CreateEvent(ctx, eventspace.BaseEventType)
	if err != nil {
	    log.Fatal(err)
	}
	eventID, err := mgr.TriggerEvent(ctx, event, boiler)

After the trigger, the watcher's local queue holds one notification whose
field list is positionally aligned with the filter's select clauses, and the
event instance is gone from the store.

# Delivery Semantics

Fan-out visits the origin and every ancestor reachable over inverse
containment references. The first delivery error aborts the remaining
fan-out; notifications already enqueued are kept. Callers must read a
non-nil TriggerEvent error as "some watchers may have received the event",
never as "no watcher did".

All operations are synchronous and uncancellable; there is no background
scheduling. The store owns whatever locking it needs.
*/
package eventspace
