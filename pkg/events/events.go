package events

import "sync"

// Event describes a mutation applied to one of the entity collections.
type Event struct {
	Type   string // e.g. "task.created", "note.updated", "folder.deleted"
	Entity string // entity family: "task", "note", "transaction", ...
	ID     string // entity id
}

// Bus fans mutation events out to subscribers. Publish never blocks the
// mutating goroutine: subscribers that fall behind drop events.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber, drop rather than block the writer.
		}
	}
}
