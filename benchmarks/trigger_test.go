// Package benchmarks contains performance benchmarks for the event
// subsystem: instance creation, trigger fan-out at varying watcher counts
// and containment depths, and publish-cycle draining.
//
// Run with: go test -bench=. -benchmem ./benchmarks/
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/randalmurphal/eventspace/pkg/eventspace"
)

func newBenchStore(b *testing.B, depth int) (*eventspace.MemStore, eventspace.NodeID) {
	b.Helper()

	store := eventspace.NewMemStore()
	parent := eventspace.ObjectsFolder
	for i := 0; i < depth; i++ {
		child, err := store.AddObjectNode(parent, fmt.Sprintf("node-%d", i))
		if err != nil {
			b.Fatal(err)
		}
		parent = child
	}
	return store, parent
}

func idFilter() eventspace.EventFilter {
	return eventspace.EventFilter{
		SelectClauses: []eventspace.SelectOperand{
			{TypeDefinition: eventspace.BaseEventType, BrowsePath: []string{"EventId"}},
		},
	}
}

func BenchmarkCreateEvent(b *testing.B) {
	store, _ := newBenchStore(b, 1)
	manager := eventspace.NewManager(store)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		event, err := manager.CreateEvent(ctx, eventspace.BaseEventType)
		if err != nil {
			b.Fatal(err)
		}
		b.StopTimer()
		if err := store.DeleteNode(event); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
	}
}

func BenchmarkTriggerEvent(b *testing.B) {
	for _, watchers := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("watchers-%d", watchers), func(b *testing.B) {
			store, origin := newBenchStore(b, 3)
			manager := eventspace.NewManager(store)
			ctx := context.Background()

			sub := eventspace.NewSubscription("bench")
			for i := 0; i < watchers; i++ {
				item := sub.NewMonitoredItem(idFilter(), eventspace.WithQueueLength(0))
				if err := store.RegisterWatcher(origin, item); err != nil {
					b.Fatal(err)
				}
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				event, err := manager.CreateEvent(ctx, eventspace.BaseEventType)
				if err != nil {
					b.Fatal(err)
				}
				b.StartTimer()

				if _, err := manager.TriggerEvent(ctx, event, origin); err != nil {
					b.Fatal(err)
				}

				b.StopTimer()
				sub.Publish(0)
				b.StartTimer()
			}
		})
	}
}

func BenchmarkTriggerEvent_Depth(b *testing.B) {
	for _, depth := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("depth-%d", depth), func(b *testing.B) {
			store, origin := newBenchStore(b, depth)
			manager := eventspace.NewManager(store)
			ctx := context.Background()

			sub := eventspace.NewSubscription("bench")
			item := sub.NewMonitoredItem(idFilter(), eventspace.WithQueueLength(0))
			if err := store.RegisterWatcher(eventspace.ObjectsFolder, item); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				event, err := manager.CreateEvent(ctx, eventspace.BaseEventType)
				if err != nil {
					b.Fatal(err)
				}
				b.StartTimer()

				if _, err := manager.TriggerEvent(ctx, event, origin); err != nil {
					b.Fatal(err)
				}

				b.StopTimer()
				sub.Publish(0)
				b.StartTimer()
			}
		})
	}
}

func BenchmarkPublish(b *testing.B) {
	store, origin := newBenchStore(b, 1)
	manager := eventspace.NewManager(store)
	ctx := context.Background()

	sub := eventspace.NewSubscription("bench")
	item := sub.NewMonitoredItem(idFilter(), eventspace.WithQueueLength(0))
	if err := store.RegisterWatcher(origin, item); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < 100; j++ {
			event, err := manager.CreateEvent(ctx, eventspace.BaseEventType)
			if err != nil {
				b.Fatal(err)
			}
			if _, err := manager.TriggerEvent(ctx, event, origin); err != nil {
				b.Fatal(err)
			}
		}
		b.StartTimer()

		if batch := sub.Publish(0); len(batch) != 100 {
			b.Fatalf("expected 100 notifications, got %d", len(batch))
		}
	}
}
