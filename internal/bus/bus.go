// Package bus fans typed events out to named broadcast groups. Groups carry
// no history: a subscriber only sees events published while it is attached.
package bus

import (
	"encoding/json"
	"log"
	"sync"
)

const subscriberBuffer = 32

// Bus routes published events to every subscriber of a group, in publish
// order per group. Publish never blocks: a subscriber whose outbound queue is
// full is closed and dropped rather than stalling the others.
type Bus struct {
	mu     sync.Mutex
	groups map[string]map[*Subscriber]struct{}
}

func New() *Bus {
	return &Bus{groups: make(map[string]map[*Subscriber]struct{})}
}

// Subscriber is one socket's attachment to a set of groups. Frames arrive on
// C as marshaled JSON.
type Subscriber struct {
	bus    *Bus
	ch     chan []byte
	once   sync.Once
	groups map[string]struct{}
	closed bool
}

// Subscribe attaches a new subscriber to group.
func (b *Bus) Subscribe(group string) *Subscriber {
	sub := &Subscriber{
		bus:    b,
		ch:     make(chan []byte, subscriberBuffer),
		groups: map[string]struct{}{group: {}},
	}
	b.mu.Lock()
	b.attachLocked(group, sub)
	b.mu.Unlock()
	return sub
}

// Add attaches an existing subscriber to another group. A subscriber that has
// already been closed or dropped stays detached: its channel is closed, so
// re-attaching it would make the next Publish send on a closed channel.
func (b *Bus) Add(sub *Subscriber, group string) {
	b.mu.Lock()
	if !sub.closed {
		sub.groups[group] = struct{}{}
		b.attachLocked(group, sub)
	}
	b.mu.Unlock()
}

func (b *Bus) attachLocked(group string, sub *Subscriber) {
	members, ok := b.groups[group]
	if !ok {
		members = make(map[*Subscriber]struct{})
		b.groups[group] = members
	}
	members[sub] = struct{}{}
}

// Publish marshals event once and enqueues it for every current member of
// group. Marshal failures are logged and the event is dropped.
func (b *Bus) Publish(group string, event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		log.Printf("bus: marshal event for %s: %v", group, err)
		return
	}

	b.mu.Lock()
	var dropped []*Subscriber
	for sub := range b.groups[group] {
		select {
		case sub.ch <- frame:
		default:
			// Slow consumer; disconnecting it keeps the group moving.
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		b.detachLocked(sub)
	}
	b.mu.Unlock()

	for _, sub := range dropped {
		sub.closeChannel()
	}
}

func (b *Bus) detachLocked(sub *Subscriber) {
	for group := range sub.groups {
		if members, ok := b.groups[group]; ok {
			delete(members, sub)
			if len(members) == 0 {
				delete(b.groups, group)
			}
		}
	}
	sub.groups = map[string]struct{}{}
	sub.closed = true
}

// C is the subscriber's receive channel. It is closed when the subscriber is
// dropped or Close is called.
func (s *Subscriber) C() <-chan []byte {
	return s.ch
}

// Close detaches the subscriber from every group it joined.
func (s *Subscriber) Close() {
	s.bus.mu.Lock()
	s.bus.detachLocked(s)
	s.bus.mu.Unlock()
	s.closeChannel()
}

func (s *Subscriber) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}
