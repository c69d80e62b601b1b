// Package notify delivers fire-and-forget events to registered subscribers,
// typically open UI windows.
package notify

import (
	"sync"

	"github.com/parvel/divtracker/pkg/log"
)

// Sink publishes an event to all currently registered subscribers.
type Sink interface {
	Publish(event string, payload any)
}

// Subscriber is one delivery target. Send may fail or panic (a destroyed
// window, a closed channel) without affecting sibling subscribers.
type Subscriber interface {
	Alive() bool
	Send(event string, payload any) error
}

// Broadcaster is the default Sink. Subscription is explicit; publishing
// isolates per-subscriber failures.
type Broadcaster struct {
	mutex sync.RWMutex
	subs  map[string]Subscriber
	log   log.LoggerService
}

func NewBroadcaster(logger log.LoggerService) *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]Subscriber),
		log:  logger.Named("notify"),
	}
}

func (b *Broadcaster) Subscribe(id string, sub Subscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.subs[id] = sub
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	delete(b.subs, id)
}

// Publish delivers the event to every live subscriber. A failing subscriber
// is logged and skipped; delivery to the others continues.
func (b *Broadcaster) Publish(event string, payload any) {
	b.mutex.RLock()
	targets := make(map[string]Subscriber, len(b.subs))
	for id, sub := range b.subs {
		targets[id] = sub
	}
	b.mutex.RUnlock()

	for id, sub := range targets {
		if !sub.Alive() {
			b.log.Debug("Skipping dead subscriber '%s' for event '%s'", id, event)
			continue
		}

		b.send(id, sub, event, payload)
	}
}

func (b *Broadcaster) send(id string, sub Subscriber, event string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("Subscriber '%s' panicked during '%s': %v", id, event, r)
		}
	}()

	if err := sub.Send(event, payload); err != nil {
		b.log.Warn("Failed to deliver '%s' to subscriber '%s': %v", event, id, err)
	}
}
